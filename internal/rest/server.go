// Package rest wires the public REST API together.
package rest

import (
	"net/http"

	"github.com/craftlist/craftlist/internal/database/models"
	"github.com/craftlist/craftlist/internal/rest/handler"
	"github.com/craftlist/craftlist/internal/setup"
	"github.com/craftlist/craftlist/internal/sitemap"
	"github.com/craftlist/craftlist/internal/worker/core"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewServer builds the API handler tree.
func NewServer(app *setup.App) http.Handler {
	logger := app.Logger.Named("rest")
	cfg := &app.Config.Common.API

	serverHandler := handler.NewServer(app.DB, app.StatusChecker, logger)
	voteHandler := handler.NewVote(app.DB, logger)
	reviewHandler := handler.NewReview(app.DB, logger)
	analyticsHandler := handler.NewAnalytics(app.DB, cfg.VisitorSalt, logger)
	promotionHandler := handler.NewPromotion(app.DB, logger)
	adminHandler := handler.NewAdmin(app.DB, core.NewMonitor(app.StatusClient, logger), logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Route("/servers", func(servers chi.Router) {
			servers.Get("/", serverHandler.List)
			servers.Post("/", serverHandler.Submit)
			servers.Get("/{slug:[a-z0-9-]+}", serverHandler.Get)
			servers.Get("/{slug:[a-z0-9-]+}/status", serverHandler.LiveStatus)

			servers.Route("/{id:[0-9]+}", func(server chi.Router) {
				server.Put("/", serverHandler.Update)
				server.Delete("/", serverHandler.Delete)
				server.Get("/icon", serverHandler.Icon)
				server.Get("/history", serverHandler.History)
				server.Get("/ranks", serverHandler.Ranks)
				server.Get("/votes", voteHandler.List)
				server.Post("/votes", voteHandler.Cast)
				server.Get("/reviews", reviewHandler.List)
				server.Post("/reviews", reviewHandler.Create)
				server.Get("/analytics", analyticsHandler.Summary)
			})
		})

		v1.Post("/events", analyticsHandler.Record)
		v1.Get("/promotions", promotionHandler.Active)

		v1.Route("/admin", func(admin chi.Router) {
			admin.Use(requireAdminToken(cfg.AdminToken))
			admin.Get("/servers/pending", adminHandler.Pending)
			admin.Post("/servers/{id}/moderate", adminHandler.Moderate)
			admin.Post("/users/{id}/ban", adminHandler.Ban)
			admin.Get("/workers", adminHandler.Workers)
			admin.Post("/promotions", promotionHandler.Create)
		})
	})

	r.Get("/sitemap.xml", sitemapHandler(app, logger))

	return r
}

// requireAdminToken guards the admin routes with a static bearer token. An
// empty configured token disables the admin surface entirely.
func requireAdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || r.Header.Get("Authorization") != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// sitemapHandler renders the sitemap from the full approved listing.
func sitemapHandler(app *setup.App, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		servers, err := app.DB.Model().Server().List(r.Context(), models.ListFilter{})
		if err != nil {
			logger.Error("Failed to list servers for sitemap", zap.Error(err))
			http.Error(w, "internal server error", http.StatusInternalServerError)

			return
		}

		body, err := sitemap.Build(app.Config.Common.Site.BaseURL, servers)
		if err != nil {
			logger.Error("Failed to build sitemap", zap.Error(err))
			http.Error(w, "internal server error", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "application/xml")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(body)
	}
}
