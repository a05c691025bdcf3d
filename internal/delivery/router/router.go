package router

import (
	"net/http"
	"os"
	"time"

	"jam-board/internal/config"
	"jam-board/internal/delivery/handler"
	"jam-board/internal/infrastructure/metrics"
	"jam-board/internal/service"
	"jam-board/internal/validation"
	"jam-board/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

func SetupAdRoutes(r *chi.Mux, adService service.AdService, validator *validation.Validator, loggers *logger.Loggers, handlerMetrics *metrics.HandlerMetrics, cfg *config.Config) {
	adHandler := handler.NewAdHandler(adService, validator, loggers, handlerMetrics)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeaders)
	if cfg.HTTP.RequestLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.HTTP.RequestLimit, time.Minute))
	}

	r.Get("/", adHandler.Home)
	r.Get("/ad/{id}", adHandler.Detail)

	r.Route("/admin", func(ar chi.Router) {
		if cfg.Admin.Token != "" {
			ar.Use(RequireToken(cfg.Admin.Token))
		}
		ar.Get("/new", adHandler.NewAdForm)
		ar.Post("/new", adHandler.CreateAd)
	})

	r.Route("/api", func(ar chi.Router) {
		ar.Get("/ads", adHandler.ListAdsJSON)
		ar.Get("/ads/{id}", adHandler.GetAdJSON)
		if cfg.Admin.Token != "" {
			ar.With(RequireToken(cfg.Admin.Token)).Post("/ads", adHandler.CreateAdJSON)
		} else {
			ar.Post("/ads", adHandler.CreateAdJSON)
		}
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if dir := cfg.HTTP.StaticDir; dir != "" {
		if _, err := os.Stat(dir); err == nil {
			fs := http.StripPrefix("/static/", http.FileServer(http.Dir(dir)))
			r.Handle("/static/*", fs)
		}
	}
}
