package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/logging"
)

type Handler struct {
	authService   Service
	secureCookies bool
}

func NewHandler(authService Service, secureCookies bool) *Handler {
	return &Handler{
		authService:   authService,
		secureCookies: secureCookies,
	}
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(r.Context()).Error("JSON encoding error", logging.FieldError, err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

func (h *Handler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   h.authService.TokenTTL(),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) respondLoggedIn(w http.ResponseWriter, r *http.Request, result *LoginResult) {
	h.setAuthCookie(w, result.Token)
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Login successful",
		"data": map[string]interface{}{
			"token":      result.Token,
			"expires_in": h.authService.TokenTTL(),
			"user":       result.User,
		},
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UsernameOrEmail string `json:"username_or_email"`
		Password        string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Password == "" || req.UsernameOrEmail == "" {
		respondError(w, r, http.StatusBadRequest, "Username/email and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respondError(w, r, http.StatusUnauthorized, "Invalid username/email or password")
			return
		}
		respondError(w, r, http.StatusInternalServerError, "Login failed. Please try again.")
		return
	}

	if result.TwoFactorRequired {
		respondJSON(w, r, http.StatusOK, map[string]interface{}{
			"status":  "success",
			"message": "Two-factor authentication required",
			"data": map[string]interface{}{
				"two_factor_required": true,
				"session_token":       result.SessionToken,
			},
		})
		return
	}

	h.respondLoggedIn(w, r, result)
}

// HandleLogout clears the cookie. It answers both GET and POST and never fails.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearAuthCookie(w)
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Logout successful",
	})
}

// HandleMe validates the token itself so a stale cookie can be cleared.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	tokenString := tokenFromRequest(r)
	if tokenString == "" {
		respondError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	claims, err := h.authService.VerifyToken(tokenString)
	if err != nil {
		h.clearAuthCookie(w)
		respondError(w, r, http.StatusUnauthorized, "Session expired. Please login again.")
		return
	}

	existingUser, err := h.authService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			h.clearAuthCookie(w)
			respondError(w, r, http.StatusUnauthorized, "Session expired. Please login again.")
			return
		}
		respondError(w, r, http.StatusInternalServerError, "Authentication failed. Please try again.")
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   existingUser,
	})
}

func (h *Handler) HandleVerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionToken string `json:"session_token"`
		Code         string `json:"code"`
	}

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil || req.SessionToken == "" || req.Code == "" {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.VerifyTwoFactor(r.Context(), req.SessionToken, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSessionToken), errors.Is(err, ErrExpiredSessionToken):
			respondError(w, r, http.StatusUnauthorized, "Session token is invalid or expired")
		case errors.Is(err, ErrInvalid2FACode):
			respondError(w, r, http.StatusUnauthorized, "Invalid 2FA code")
		case errors.Is(err, ErrUser2FANotEnabled), errors.Is(err, ErrTwoFactorNotSetUp), errors.Is(err, ErrUserNotFound):
			respondError(w, r, http.StatusUnauthorized, "Two-factor authentication is not enabled")
		default:
			respondError(w, r, http.StatusInternalServerError, "Could not verify two-factor authentication")
		}
		return
	}

	h.respondLoggedIn(w, r, result)
}

func (h *Handler) HandleSetupTwoFactor(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "User not authorized")
		return
	}

	otpURI, err := h.authService.SetupTwoFactor(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUser2FAAlreadyEnabled) {
			respondError(w, r, http.StatusConflict, "Two-factor authentication is already enabled")
			return
		}
		respondError(w, r, http.StatusInternalServerError, "Could not set up two-factor authentication")
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Two-factor authentication initiated. Please verify to enable.",
		"data": map[string]string{
			"otp_uri": otpURI,
		},
	})
}

func (h *Handler) HandleEnableTwoFactor(w http.ResponseWriter, r *http.Request) {
	h.handleTwoFactorToggle(w, r, h.authService.EnableTwoFactor, "Two-factor authentication enabled successfully")
}

func (h *Handler) HandleDisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	h.handleTwoFactorToggle(w, r, h.authService.DisableTwoFactor, "Two-factor authentication disabled successfully")
}

func (h *Handler) handleTwoFactorToggle(w http.ResponseWriter, r *http.Request, toggle func(ctx context.Context, userID, code string) error, successMessage string) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "User not authorized")
		return
	}

	if err := toggle(r.Context(), userID, req.Code); err != nil {
		switch {
		case errors.Is(err, ErrInvalid2FACode):
			respondError(w, r, http.StatusUnauthorized, "Invalid 2FA code")
		case errors.Is(err, ErrUser2FAAlreadyEnabled):
			respondError(w, r, http.StatusConflict, "Two-factor authentication is already enabled")
		case errors.Is(err, ErrUser2FANotEnabled):
			respondError(w, r, http.StatusBadRequest, "Two-factor authentication is not enabled")
		case errors.Is(err, ErrTwoFactorNotSetUp):
			respondError(w, r, http.StatusBadRequest, "Two-factor authentication has not been set up")
		default:
			respondError(w, r, http.StatusInternalServerError, "Could not update two-factor authentication")
		}
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]string{
		"status":  "success",
		"message": successMessage,
	})
}
