package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"enroll/internal/auth"
)

// kakaoAPI is the provider surface the handlers need; the concrete client
// lives in internal/auth.
type kakaoAPI interface {
	IntrospectToken(ctx context.Context, accessToken string) (auth.TokenInfo, error)
	FetchAccount(ctx context.Context, accessToken string, targetID int64) (auth.Account, error)
}

// SignupHandler exposes the token-validation-and-provisioning pipeline over
// HTTP.
type SignupHandler struct {
	kakao   kakaoAPI
	service *auth.Service
	logger  *slog.Logger
}

// NewSignupHandler creates a handler.
func NewSignupHandler(kakao kakaoAPI, service *auth.Service, logger *slog.Logger) *SignupHandler {
	return &SignupHandler{kakao: kakao, service: service, logger: logger}
}

type accessTokenPayload struct {
	AccessToken string `json:"accessToken"`
}

type userResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TokenInfo handles POST /api/auth/kakao/token-info.
// It validates the supplied access token against the provider and returns
// the provider's token metadata.
func (h *SignupHandler) TokenInfo(w http.ResponseWriter, r *http.Request) {
	var payload accessTokenPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	info, err := h.kakao.IntrospectToken(r.Context(), payload.AccessToken)
	if err != nil {
		h.logger.Warn("token introspection rejected", "error", err)
		writeError(w, http.StatusUnauthorized, "access token could not be verified")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"subjectId": info.ID,
		"expiresIn": info.ExpiresIn,
		"appId":     info.AppID,
	})
}

// Signup handles POST /api/auth/kakao/signup.
// Pipeline: introspect the token, fetch the account, map to canonical
// attributes, provision the user.
func (h *SignupHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload accessTokenPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.kakao.IntrospectToken(r.Context(), payload.AccessToken); err != nil {
		h.logger.Warn("signup: token introspection rejected", "error", err)
		writeError(w, http.StatusUnauthorized, "access token could not be verified")
		return
	}

	account, err := h.kakao.FetchAccount(r.Context(), payload.AccessToken, 0)
	if err != nil {
		h.logger.Error("signup: account fetch failed", "error", err)
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
		h.respondCreateUserError(w, err)
		return
	}

	h.logger.Info("user provisioned", "email", user.Email)
	writeJSON(w, http.StatusCreated, userResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	})
}

func (h *SignupHandler) respondCreateUserError(w http.ResponseWriter, err error) {
	var already *auth.AlreadyRegisteredError
	switch {
	case errors.As(err, &already):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "an account already exists for this email",
			"email": already.Email,
		})
	case errors.Is(err, auth.ErrMissingAttribute):
		writeError(w, http.StatusUnprocessableEntity, "email permission is required to sign up")
	case errors.Is(err, auth.ErrStoreUnavailable):
		h.logger.Error("signup: store unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "user store unavailable")
	default:
		h.logger.Error("signup: provisioning failed", "error", err)
		writeError(w, http.StatusInternalServerError, "unexpected error")
	}
}

// UpdateProfileImage handles PUT /api/users/{id}/profile-image.
// Overwrites are idempotent; repeating a request is harmless.
func (h *SignupHandler) UpdateProfileImage(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var payload struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.ImageURL) == "" {
		writeError(w, http.StatusBadRequest, "imageUrl is required")
		return
	}

	if err := h.service.UpdateProfileImage(r.Context(), userID, payload.ImageURL); err != nil {
		h.logger.Error("profile image update failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "user store unavailable")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
