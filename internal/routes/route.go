package routes

import (
	"net/http"

	"cctv-survey/internal/auth"
	"cctv-survey/internal/config"
	"cctv-survey/internal/handlers"
	"cctv-survey/internal/logger"
	mdlwr "cctv-survey/internal/middleware"
	"cctv-survey/internal/services"
	"cctv-survey/internal/strapi"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires services and handlers. runs is the import audit store;
// pass services.NopRunStore{} when no database is configured.
func NewRouter(cfg *config.Config, logr *logger.Logger, runs services.RunStore) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mdlwr.RequestLogger(logr.Logger))
	r.Use(middleware.Recoverer)

	// CORS middleware with config
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	var verifier *auth.Verifier
	if cfg.JWTSecret != "" {
		verifier = auth.NewVerifier(cfg.JWTSecret)
	}
	authMW := mdlwr.NewAuthMiddleware(verifier, logr.Logger)

	client := strapi.NewClient(cfg.StrapiURL, cfg.StrapiToken, cfg.StrapiTimeout)
	dates := services.DateOptions{
		Order:    services.ParseDateOrder(cfg.SurveyDateOrder),
		Date1904: cfg.Date1904,
	}

	catalogSvc := services.NewCatalogService(client, cfg.CatalogPageSize, logr.Logger)
	boqImportSvc := services.NewBOQImportService(client, catalogSvc, dates, cfg.ImportWorkers, runs, logr.Logger)
	boqSvc := services.NewBOQService(client)
	locationImportSvc := services.NewLocationImportService(client, catalogSvc, runs, logr.Logger)

	boqHandler := handlers.NewBOQHandler(boqImportSvc, boqSvc, catalogSvc, logr.Logger)
	locationHandler := handlers.NewLocationHandler(locationImportSvc, logr.Logger)
	importRunHandler := handlers.NewImportRunHandler(runs, logr.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("ok"))
		if err != nil {
			return
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMW.JWTAuth)

		r.Route("/boqs", func(r chi.Router) {
			r.Get("/", boqHandler.List)
			r.Post("/import", boqHandler.Import)
			r.Get("/total", boqHandler.Total)
			r.Get("/template", boqHandler.Template)
			r.Get("/export", boqHandler.Export)
			r.Delete("/{id}", boqHandler.Delete)
		})

		r.Route("/locations", func(r chi.Router) {
			r.Post("/import", locationHandler.Import)
			r.Get("/template", locationHandler.Template)
		})

		r.Post("/coordinates/normalize", locationHandler.NormalizeCoordinates)

		r.Route("/imports", func(r chi.Router) {
			r.Get("/", importRunHandler.List)
			r.Get("/{id}", importRunHandler.Get)
			r.Get("/{id}/report", importRunHandler.Report)
		})
	})

	return r
}
