package http

import (
	"net/http"

	"github.com/go-api-accounts/internal/config"
	"github.com/go-api-accounts/internal/transport/http/handler"
	appmiddleware "github.com/go-api-accounts/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(appmiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, on the unauthenticated write paths.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	basicAuth := appmiddleware.BasicAuth(deps.Users)

	healthH := handler.NewHealthHandler(deps.DB, cfg.OutboundTimeout)
	userH := handler.NewUserHandler(deps.Users)
	verifyH := handler.NewVerifyHandler(deps.Verification)
	picH := handler.NewProfilePicHandler(deps.ProfilePics, cfg.MaxUploadBytes)

	r.HandleFunc("/healthz", healthH.Check)
	r.HandleFunc("/cicd", healthH.Check)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.With(sensitiveRL.Limit).Get("/verify", verifyH.Verify)

	r.Route("/v1/user", func(r chi.Router) {
		r.With(sensitiveRL.Limit).Post("/", userH.Register)

		r.Group(func(r chi.Router) {
			r.Use(basicAuth)

			r.Post("/self/pic", picH.Upload)
			r.Get("/self/pic", picH.Get)
			r.Delete("/self/pic", picH.Delete)

			r.With(appmiddleware.RequireVerified).Get("/self", userH.GetSelf)
			r.With(appmiddleware.RequireVerified).Put("/self", userH.UpdateSelf)
		})
	})

	return r
}
