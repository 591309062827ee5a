package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/meridian-labs/heimdall/core"
	"github.com/meridian-labs/heimdall/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints.
type AuthHandlers struct {
	auth *service.AuthService
	log  *zap.Logger
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(auth *service.AuthService, log *zap.Logger) *AuthHandlers {
	return &AuthHandlers{auth: auth, log: log}
}

type loginStartRequest struct {
	PublicKey string `json:"publicKey" binding:"required"`
}

type challengeAnswer struct {
	Code      string `json:"code" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

type loginCompleteRequest struct {
	PublicKey string          `json:"publicKey" binding:"required"`
	Challenge challengeAnswer `json:"challenge" binding:"required"`
	Device    string          `json:"device" binding:"required,min=1,max=500"`
}

type registerStartRequest struct {
	CaptchaToken string `json:"captchaToken"`
}

type userView struct {
	ID          string          `json:"id"`
	PublicKey   string          `json:"publicKey"`
	Namespace   string          `json:"namespace"`
	Profile     json.RawMessage `json:"profile"`
	Permissions json.RawMessage `json:"permissions"`
}

type sessionView struct {
	ID         string    `json:"id"`
	User       string    `json:"user"`
	CreatedAt  time.Time `json:"createdAt"`
	AccessedAt time.Time `json:"accessedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Device     string    `json:"device"`
	UserAgent  string    `json:"userAgent"`
}

func newSessionView(s core.Session) sessionView {
	return sessionView{
		ID:         s.ID,
		User:       s.User,
		CreatedAt:  s.CreatedAt,
		AccessedAt: s.AccessedAt,
		ExpiresAt:  s.ExpiresAt,
		Device:     s.Device,
		UserAgent:  s.UserAgent,
	}
}

// LoginStart handles POST /auth/login/start.
func (h *AuthHandlers) LoginStart(c *gin.Context) {
	var req loginStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	challenge, err := h.auth.StartLogin(c.Request.Context(), req.PublicKey)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User cannot be found"})
			return
		}
		h.log.Error("start login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"challenge": challenge.Code})
}

// RegisterStart handles POST /auth/register/start.
func (h *AuthHandlers) RegisterStart(c *gin.Context) {
	var req registerStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	challenge, err := h.auth.StartRegistration(c.Request.Context())
	if err != nil {
		h.log.Error("start registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"challenge": challenge.Code})
}

// LoginComplete handles POST /auth/login/complete.
func (h *AuthHandlers) LoginComplete(c *gin.Context) {
	var req loginCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.auth.CompleteLogin(
		c.Request.Context(),
		req.PublicKey,
		req.Challenge.Code,
		req.Challenge.Signature,
		req.Device,
		c.GetHeader("User-Agent"),
	)
	if err != nil {
		switch {
		// Which challenge check failed is not revealed to the client.
		case errors.Is(err, core.ErrChallengeNotFound),
			errors.Is(err, core.ErrChallengeMismatch),
			errors.Is(err, core.ErrChallengeExpired),
			errors.Is(err, core.ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid challenge or signature"})
		case errors.Is(err, core.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User cannot be found"})
		case errors.Is(err, core.ErrMissingUserAgent), errors.Is(err, core.ErrInvalidDevice):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		default:
			h.log.Error("complete login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userView{
			ID:          result.User.ID,
			PublicKey:   result.User.PublicKey,
			Namespace:   result.User.Namespace,
			Profile:     result.User.Profile,
			Permissions: result.User.Permissions,
		},
		"session": newSessionView(result.Session),
		"token":   result.Token,
	})
}

// CurrentSession handles GET /api/session. The middleware has already
// resolved and bumped the session.
func (h *AuthHandlers) CurrentSession(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": newSessionView(session)})
}

// Logout handles DELETE /api/session.
func (h *AuthHandlers) Logout(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), session); err != nil {
		h.log.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
