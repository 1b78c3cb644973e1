package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"civiclens-be/middlewares"
	"civiclens-be/services"

	"github.com/gin-gonic/gin"
)

const (
	googleProvider = "google"

	// The nonce cookie lives as long as the signed state and is only sent
	// back to the Google routes.
	nonceCookie     = "oauth_nonce"
	nonceCookiePath = "/auth/google"
	nonceCookieAge  = 600
)

type AuthController struct {
	auth          *services.AuthService
	frontendURL   string
	secureCookies bool
}

func NewAuthController(auth *services.AuthService, frontendURL string) *AuthController {
	return &AuthController{
		auth:          auth,
		frontendURL:   frontendURL,
		secureCookies: strings.HasPrefix(frontendURL, "https://"),
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"max=100"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// Register handles POST /auth/register.
func (h *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	slog.Info("user registered", "user_id", result.User.ID.Hex())
	c.JSON(http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login handles POST /auth/login. A role in the body must match the
// account's role.
func (h *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GoogleStart redirects the browser to Google's consent screen.
func (h *AuthController) GoogleStart(c *gin.Context) {
	target, nonce, err := h.auth.StartFederated(googleProvider, c.Query("role"))
	if err != nil {
		slog.Warn("google login unavailable", "error", err)
		h.redirectLoginError(c, "auth_failed")
		return
	}
	h.setNonceCookie(c, nonce, nonceCookieAge)
	c.Redirect(http.StatusFound, target)
}

// GoogleCallback finishes the flow and hands the credential to the
// front-end callback page.
func (h *AuthController) GoogleCallback(c *gin.Context) {
	nonce, _ := c.Cookie(nonceCookie)
	h.setNonceCookie(c, "", -1)

	if errParam := c.Query("error"); errParam != "" {
		slog.Info("google login declined", "reason", errParam)
		h.redirectLoginError(c, "auth_failed")
		return
	}

	result, err := h.auth.CompleteFederated(c.Request.Context(), googleProvider, c.Query("state"), nonce, c.Query("code"))
	if err != nil {
		var de *services.DomainError
		if !errors.As(err, &de) || de.Status >= http.StatusInternalServerError {
			slog.Error("google callback failed", "error", err)
		}
		h.redirectLoginError(c, "auth_failed")
		return
	}

	q := url.Values{}
	q.Set("token", result.Token)
	q.Set("role", string(result.User.Role))
	c.Redirect(http.StatusFound, h.frontendURL+"/auth/callback?"+q.Encode())
}

func (h *AuthController) setNonceCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     nonceCookie,
		Value:    value,
		MaxAge:   maxAge,
		Path:     nonceCookiePath,
		Secure:   h.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthController) redirectLoginError(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, h.frontendURL+"/login?error="+url.QueryEscape(reason))
}

// Me handles GET /auth/me behind RequireAuth.
func (h *AuthController) Me(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout is an acknowledgement only. Credentials are stateless.
func (h *AuthController) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
