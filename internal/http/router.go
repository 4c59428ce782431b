package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/ledgerimport/internal/http/matching"
	"github.com/MrJamesThe3rd/ledgerimport/internal/http/profile"
	"github.com/MrJamesThe3rd/ledgerimport/internal/http/statement"
)

func New(
	importV1 *statement.Handler,
	profilesV1 *profile.Handler,
	matchingV1 *matching.Handler,
	gatherer prometheus.Gatherer,
	allowedOrigins []string,
	jwtSecret string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(RequireToken(jwtSecret))

		r.Route("/import", importV1.Routes)

		r.Route("/profiles", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			profilesV1.Routes(r)
		})

		r.Route("/matching", func(r chi.Router) {
			matchingV1.Routes(r)
		})
	})

	return router
}
