// Package httpapi wires the handler set onto a chi router with the shared
// middleware chain.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ugcstudio/internal/http/handlers"
	"ugcstudio/internal/infra"
	"ugcstudio/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	r.Use(middleware.Auth(func(token string) (string, error) {
		acc, err := app.Accounts.AccountByToken(token)
		if err != nil {
			return "", err
		}
		return acc.Email, nil
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", app.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", app.Register)
			r.Post("/login", app.Login)
			r.Get("/verify", app.Verify)
			r.Post("/logout", app.Logout)
		})

		r.Get("/settings", app.GetSettings)
		r.Post("/settings", app.SaveSettings)

		r.Post("/upload-image", app.UploadImage)
		r.Post("/generate-script", app.GenerateScript)
		r.Post("/generate-video-prompt", app.GenerateVideoPrompt)
		r.Post("/create-video", app.CreateVideo)
		r.Get("/video-status/{taskId}", app.VideoStatus)
	})

	return r
}
