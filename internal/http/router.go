package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"enroll/internal/auth"
	"enroll/internal/config"
)

// NewRouter wires application routes and middleware using chi. The
// authenticator may be nil when the authorization-code flow is not
// configured; the token-based endpoints remain available.
func NewRouter(cfg config.Config, kakao *auth.KakaoClient, authenticator *auth.KakaoAuthenticator, svc *auth.Service, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))
	r.Use(newSlogMiddleware(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})

	signupHandler := NewSignupHandler(kakao, svc, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth/kakao", func(r chi.Router) {
			r.Post("/signup", signupHandler.Signup)
			r.Post("/token-info", signupHandler.TokenInfo)

			if authenticator != nil {
				oauthHandler := NewOAuthHandler(authenticator, kakao, svc, cfg.Environment, logger)
				r.Get("/", oauthHandler.Initiate)
				r.Get("/callback", oauthHandler.Callback)
			}
		})

		r.Put("/users/{id}/profile-image", signupHandler.UpdateProfileImage)
	})

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}
