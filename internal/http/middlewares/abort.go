package middlewares

import "github.com/gin-gonic/gin"

// abortWithEnvelope stops the chain with the same {success, message} body the handlers use.
func abortWithEnvelope(c *gin.Context, status int, message string) {
	body := gin.H{
		"success": false,
		"message": message,
	}

	if id, ok := c.Get(CtxRequestID); ok {
		body["requestId"] = id
	}

	c.AbortWithStatusJSON(status, body)
}
