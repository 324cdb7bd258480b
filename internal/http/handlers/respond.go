package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/babycare/storefront/internal/domain/product"
	"github.com/babycare/storefront/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const (
	MsgInternal        = "Internal server error"
	MsgUserExists      = "User already exists"
	MsgInvalidLogin    = "Invalid email or password"
	MsgProductNotFound = "Product not found"
	MsgInvalidProduct  = "Invalid product id"
	MsgInvalidBody     = "Invalid request body"
)

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

// envelope builds the {success, message, ...} body every API response uses.
func envelope(success bool, message string, extra gin.H) gin.H {
	body := gin.H{
		"success": success,
		"message": message,
	}

	for k, v := range extra {
		body[k] = v
	}

	return body
}

func RespondSuccess(ctx *gin.Context, status int, message string, extra gin.H) {
	ctx.JSON(status, envelope(true, message, extra))
}

func RespondError(ctx *gin.Context, status int, message string, details interface{}) {
	extra := gin.H{}

	if details != nil {
		extra["details"] = details
	}

	if id := requestIDFrom(ctx); id != "" {
		extra["requestId"] = id
	}

	ctx.JSON(status, envelope(false, message, extra))
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message, nil)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message, nil)
}

func RespondInternal(ctx *gin.Context) {
	RespondError(ctx, http.StatusInternalServerError, MsgInternal, nil)
}

// RespondServiceError maps domain errors to statuses. Anything unrecognised is
// logged and reported as a 500.
func RespondServiceError(ctx *gin.Context, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, user.ErrEmailTaken):
		RespondBadRequest(ctx, MsgUserExists, nil)
	case errors.Is(err, user.ErrPasswordTooLong):
		RespondBadRequest(ctx, MsgInvalidBody, gin.H{"fields": []FieldError{{
			Field:   "password",
			Rule:    "maxbytes",
			Param:   strconv.Itoa(user.MaxPasswordBytes),
			Message: validationMessage("maxbytes", strconv.Itoa(user.MaxPasswordBytes)),
		}}})
	case errors.Is(err, user.ErrInvalidCredentials):
		RespondUnauthorized(ctx, MsgInvalidLogin)
	case errors.Is(err, product.ErrInvalidID):
		RespondBadRequest(ctx, MsgInvalidProduct, nil)
	case errors.Is(err, product.ErrInvalidQuery):
		RespondBadRequest(ctx, err.Error(), nil)
	case errors.Is(err, product.ErrNotFound):
		RespondNotFound(ctx, MsgProductNotFound)
	default:
		if log != nil {
			log.ErrorContext(ctx.Request.Context(), "request failed",
				"request_id", requestIDFrom(ctx),
				"route", ctx.FullPath(),
				"err", err,
			)
		}
		RespondInternal(ctx)
	}
}
