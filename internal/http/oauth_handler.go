package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"golang.org/x/oauth2"

	"enroll/internal/auth"
)

const (
	oauthStateCookieName = "enroll_oauth_state"
	oauthStateCookieTTL  = 10 * time.Minute
)

type kakaoAuthenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, *auth.KakaoClaims, error)
}

// OAuthHandler drives the browser authorization-code flow. It ends in the
// same provisioning pipeline the token-based signup endpoint uses.
type OAuthHandler struct {
	authenticator kakaoAuthenticator
	kakao         kakaoAPI
	service       *auth.Service
	logger        *slog.Logger
	secureCookie  bool
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(authenticator kakaoAuthenticator, kakao kakaoAPI, service *auth.Service, env string, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		authenticator: authenticator,
		kakao:         kakao,
		service:       service,
		logger:        logger,
		secureCookie:  !strings.EqualFold(env, "development"),
	}
}

// Initiate handles GET /api/auth/kakao.
// Sets a CSRF state cookie and redirects to Kakao's consent screen.
func (h *OAuthHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateState()
	if err != nil {
		h.logger.Error("failed to generate state", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(oauthStateCookieTTL.Seconds()),
	})

	http.Redirect(w, r, h.authenticator.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles GET /api/auth/kakao/callback.
// Verifies state, exchanges the code, then runs the provisioning pipeline
// with the access token Kakao issued.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil {
		h.logger.Warn("oauth callback: missing state cookie")
		writeError(w, http.StatusBadRequest, "session expired, please retry")
		return
	}

	state := r.URL.Query().Get("state")
	if subtle.ConstantTimeCompare([]byte(state), []byte(stateCookie.Value)) != 1 {
		h.logger.Warn("oauth callback: state mismatch")
		writeError(w, http.StatusBadRequest, "invalid state")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn("oauth callback: provider error", "error", errParam)
		writeError(w, http.StatusUnauthorized, "provider rejected the authorization")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	token, claims, err := h.authenticator.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed", "error", err)
		writeError(w, http.StatusUnauthorized, "failed to complete authentication")
		return
	}

	// Without verified OIDC claims the access token is validated the same
	// way token-based callers are: through introspection.
	if claims == nil {
		if _, err := h.kakao.IntrospectToken(r.Context(), token.AccessToken); err != nil {
			h.logger.Warn("oauth callback: token introspection rejected", "error", err)
			writeError(w, http.StatusUnauthorized, "access token could not be verified")
			return
		}
	}

	account, err := h.kakao.FetchAccount(r.Context(), token.AccessToken, 0)
	if err != nil {
		h.logger.Error("oauth callback: account fetch failed", "error", err)
		writeError(w, http.StatusBadGateway, "could not retrieve account from provider")
		return
	}

	attrs, err := auth.NewOAuthAttributes(account)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "email permission is required to sign up")
		return
	}

	user, err := h.service.CreateUser(r.Context(), attrs)
	if err != nil {
		var already *auth.AlreadyRegisteredError
		if errors.As(err, &already) {
			// Known identity: this is a login, not a fault.
			writeJSON(w, http.StatusOK, map[string]string{
				"status": "existing_user",
				"email":  already.Email,
			})
			return
		}
		h.logger.Error("oauth callback: provisioning failed", "error", err)
		writeError(w, http.StatusInternalServerError, "unexpected error")
		return
	}

	h.logger.Info("user provisioned via code flow", "email", user.Email)
	writeJSON(w, http.StatusCreated, userResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	})
}
