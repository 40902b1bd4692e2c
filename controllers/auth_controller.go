package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/daybreakhq/wakeup/config"
	"github.com/daybreakhq/wakeup/middleware"
	"github.com/daybreakhq/wakeup/utils"
)

const tokenLifetime = 24 * time.Hour

// AuthController exchanges the chat gateway's shared secret for per-principal
// bearer tokens. The gateway authenticates chat users on its own side and
// calls Login once per session.
type AuthController struct{}

// NewAuthController creates a new controller instance.
func NewAuthController() *AuthController {
	return &AuthController{}
}

type loginRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
	Secret      string `json:"secret" binding:"required"`
}

// Login verifies the gateway secret and issues a JWT for the principal.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "user_id, display_name and secret are required")
		return
	}

	cfg := config.Get()
	if cfg.GatewaySecretHash == "" {
		utils.Error(ctx, http.StatusServiceUnavailable, 50310, "gateway auth not configured")
		return
	}
	if !utils.CheckSecret(cfg.GatewaySecretHash, req.Secret) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid gateway secret")
		return
	}

	name := utils.SanitizeName(req.DisplayName)
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40011, "display_name is empty after sanitization")
		return
	}

	token, err := utils.GenerateToken(req.UserID, name, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token":      token,
		"expires_in": int(tokenLifetime.Seconds()),
	})
}

// getPrincipal pulls the authenticated identity set by middleware.AuthRequired.
func getPrincipal(ctx *gin.Context) (string, string, bool) {
	id := ctx.GetString(middleware.ContextUserIDKey)
	name := ctx.GetString(middleware.ContextDisplayNameKey)
	return id, name, id != ""
}
