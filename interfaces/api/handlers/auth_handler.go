package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"photocritic/domain/dto"
	"photocritic/domain/services"
	"photocritic/pkg/logger"
	"photocritic/pkg/utils"
)

type AuthHandler struct {
	authService  services.AuthService
	frontendURL  string
	secureCookie bool
}

func NewAuthHandler(authService services.AuthService, frontendURL string, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		frontendURL:  strings.TrimRight(frontendURL, "/"),
		secureCookie: secureCookie,
	}
}

// GoogleLogin redirects to Google OAuth
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	logger.Auth("LOGIN_START", "User initiating Google OAuth login", map[string]interface{}{
		"ip":         c.IP(),
		"user_agent": c.Get("User-Agent"),
	})

	state, err := generateState()
	if err != nil {
		logger.AuthError("LOGIN_ERROR", "Failed to generate state", err, nil)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate state", err)
	}

	h.setCookie(c, "oauth_state", state, 10*time.Minute)
	// only same-site paths survive the round trip
	redirect := c.Query("redirect", "/")
	if !strings.HasPrefix(redirect, "/") || strings.HasPrefix(redirect, "//") {
		redirect = "/"
	}
	h.setCookie(c, "oauth_redirect", redirect, 10*time.Minute)

	return c.Redirect(h.authService.GetGoogleAuthURL(state))
}

// GoogleCallback handles the OAuth callback from Google
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies("oauth_state") {
		logger.AuthError("CALLBACK_ERROR", "Invalid state parameter", nil, map[string]interface{}{"ip": c.IP()})
		return c.Redirect(h.frontendURL + "/?error=invalid_state")
	}
	h.clearCookie(c, "oauth_state")

	if errMsg := c.Query("error"); errMsg != "" {
		logger.AuthError("CALLBACK_ERROR", "Google returned error", nil, map[string]interface{}{"google_error": errMsg})
		return c.Redirect(h.frontendURL + "/?error=" + url.QueryEscape(errMsg))
	}

	code := c.Query("code")
	if code == "" {
		logger.AuthError("CALLBACK_ERROR", "Missing authorization code", nil, nil)
		return c.Redirect(h.frontendURL + "/?error=missing_code")
	}

	token, user, err := h.authService.HandleGoogleCallback(c.UserContext(), code)
	if err != nil {
		logger.AuthError("CALLBACK_ERROR", "Failed to complete sign-in", err, nil)
		return c.Redirect(h.frontendURL + "/?error=auth_failed")
	}

	logger.Auth("CALLBACK_SUCCESS", "User authenticated successfully", map[string]interface{}{
		"user_id": user.ID.String(),
	})

	redirect := c.Cookies("oauth_redirect", "/")
	h.clearCookie(c, "oauth_redirect")
	h.setCookie(c, "auth_token", token, utils.TokenTTL)

	target := h.frontendURL + "/auth/callback?token=" + url.QueryEscape(token) + "&redirect=" + url.QueryEscape(redirect)
	return c.Redirect(target)
}

// GetCurrentUser returns the current authenticated user
func (h *AuthHandler) GetCurrentUser(c *fiber.Ctx) error {
	if _, err := utils.GetUserFromContext(c); err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}

	token := utils.ExtractTokenFromHeader(c.Get("Authorization"))
	if token == "" {
		token = c.Cookies("auth_token")
	}
	user, err := h.authService.GetCurrentUser(c.UserContext(), token)
	if err != nil {
		return handleServiceError(c, "current_user", err)
	}
	return utils.SuccessResponse(c, "User retrieved successfully", dto.UserToUserResponse(user))
}

// Logout clears the auth cookie
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearCookie(c, "auth_token")
	return utils.SuccessResponse(c, "Logged out successfully", nil)
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: "Lax",
	})
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx, name string) {
	h.setCookie(c, name, "", -time.Hour)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
