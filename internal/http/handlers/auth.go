package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/babycare/storefront/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// requestTimeout bounds store work for one request; client disconnects cancel it sooner.
const requestTimeout = 3 * time.Second

type Authenticator interface {
	Register(ctx context.Context, req user.RegisterRequest) error
	Login(ctx context.Context, req user.LoginRequest) (string, error)
}

type AuthHandler struct {
	auth Authenticator
	log  *slog.Logger
}

func NewAuthHandler(auth Authenticator, log *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// bcrypt takes most of this budget
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	err := h.auth.Register(cctx, req)

	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	RespondSuccess(ctx, http.StatusCreated, "User registered successfully", nil)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	token, err := h.auth.Login(cctx, req)

	if err != nil {
		RespondServiceError(ctx, h.log, err)
		return
	}

	RespondSuccess(ctx, http.StatusOK, "Login successful", gin.H{"token": token})
}
