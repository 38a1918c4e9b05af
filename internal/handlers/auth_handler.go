package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ArowuTest/outline-analytics-backend/internal/apperror"
	"github.com/ArowuTest/outline-analytics-backend/internal/models"
	"github.com/gin-gonic/gin"
)

// AccountService is the identity flow the auth endpoints drive
type AccountService interface {
	Register(ctx context.Context, name, email string) (*models.User, error)
	VerifyOTP(ctx context.Context, email, code string) (*models.User, error)
	ResendOTP(ctx context.Context, email string) (*models.User, error)
	Login(ctx context.Context, email string) (*models.User, error)
}

// TokenIssuer mints session tokens
type TokenIssuer interface {
	Issue(userID, email string) (string, time.Time, error)
	TTL() time.Duration
}

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler handles registration, OTP and session requests
type AuthHandler struct {
	accounts AccountService
	tokens   TokenIssuer
	cookie   CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accounts AccountService, tokens TokenIssuer, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		tokens:   tokens,
		cookie:   cookie,
	}
}

// Register handles POST /v1/user/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.InvalidBody)
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user.Profile()})
}

// VerifyOTP handles POST /v1/user/otp/verify. A verified account receives a
// session token in the body and in the session cookie.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.InvalidBody)
		return
	}

	user, err := h.accounts.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		respondError(c, err)
		return
	}

	token, _, err := h.tokens.Issue(user.ID.Hex(), user.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setSessionCookie(c, token, int(h.tokens.TTL().Seconds()))

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user.Profile(), "token": token})
}

// ResendOTP handles POST /v1/user/otp/resend
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	h.sendCode(c, h.accounts.ResendOTP)
}

// Login handles POST /v1/user/login
func (h *AuthHandler) Login(c *gin.Context) {
	h.sendCode(c, h.accounts.Login)
}

// Logout handles POST /v1/user/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) sendCode(c *gin.Context, send func(context.Context, string) (*models.User, error)) {
	var req models.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.InvalidBody)
		return
	}

	if _, err := send(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP sent to your email"})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
