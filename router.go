package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"
)

// routes wires middlewares and endpoints. CORS origins come from config.
func (a *App) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(accessLog)
	r.Use(prometheusMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", sourceHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", a.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=60")
		w.Write(openapiYAML)
	})

	r.Mount("/swagger", httpSwagger.Handler(
		httpSwagger.URL("/api/openapi.yaml"),
	))

	r.Route("/api", func(api chi.Router) {
		if rl := a.cfg.RateLimit; rl.Enabled && rl.Requests > 0 {
			api.Use(httprate.Limit(rl.Requests, rl.Window,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					respondError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, try again later", nil)
				}),
			))
		}

		api.Post("/recommend", a.handleRecommend)
		api.Get("/crops", a.handleListCrops)

		api.Post("/auth/register", a.handleRegister)
		api.Post("/auth/login", a.handleLogin)

		api.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware)
			pr.Get("/me", a.handleMe)

			pr.Route("/recommendations", func(rr chi.Router) {
				rr.Get("/", a.handleListRecommendations)
				rr.Post("/", a.handleSaveRecommendation)
				rr.Get("/{id}", a.handleGetRecommendation)
				rr.Delete("/{id}", a.handleDeleteRecommendation)
			})
		})
	})

	return r
}
