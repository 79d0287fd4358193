package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/herry-chi/dashboard-operation-lifex/src/config"
	"github.com/herry-chi/dashboard-operation-lifex/src/database"
	"github.com/herry-chi/dashboard-operation-lifex/src/handlers"
	"github.com/herry-chi/dashboard-operation-lifex/src/logger"
	"github.com/herry-chi/dashboard-operation-lifex/src/services"
)

var limiter *rate.Limiter

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == config.Cfg.AllowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, If-None-Match")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Starting deals dashboard backend...")

	limiter = rate.NewLimiter(rate.Limit(config.Cfg.RateLimitPerSecond), config.Cfg.RateLimitBurst)

	if err := database.InitDB(config.Cfg.DatabasePath); err != nil {
		logger.L.Error("Failed to initialize database", "error", err)
		panic(err)
	}

	reportCache := cache.New(config.Cfg.ReportCacheTTL, config.Cfg.ReportCacheCleanup)

	dashboardService := services.NewDashboardService(database.DB, reportCache)
	commentService := services.NewChartCommentService(database.DB)

	uploadHandler := handlers.NewUploadHandler(dashboardService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	commentHandler := handlers.NewCommentHandler(commentService)

	apiMux := http.NewServeMux()

	apiMux.HandleFunc("POST /api/upload", uploadHandler.HandleUpload)
	apiMux.HandleFunc("DELETE /api/dataset", uploadHandler.HandleClearDataset)
	apiMux.HandleFunc("GET /api/dataset/meta", uploadHandler.HandleDatasetMeta)

	apiMux.HandleFunc("GET /api/deals", dashboardHandler.HandleGetDeals)
	apiMux.HandleFunc("GET /api/deals/lost", dashboardHandler.HandleGetLostDeals)
	apiMux.HandleFunc("GET /api/stats", dashboardHandler.HandleGetStats)
	apiMux.HandleFunc("GET /api/status-counts", dashboardHandler.HandleGetStatusCounts)
	apiMux.HandleFunc("GET /api/lead-sources", dashboardHandler.HandleGetLeadSources)
	apiMux.HandleFunc("GET /api/brokers", dashboardHandler.HandleGetBrokers)
	apiMux.HandleFunc("GET /api/weekly", dashboardHandler.HandleGetWeekly)
	apiMux.HandleFunc("GET /api/new-deals", dashboardHandler.HandleGetNewDeals)
	apiMux.HandleFunc("GET /api/flow", dashboardHandler.HandleGetFlow)
	apiMux.HandleFunc("GET /api/treemap", dashboardHandler.HandleGetTreemap)

	apiMux.HandleFunc("GET /api/comments/{chartID}", commentHandler.HandleGetComment)
	apiMux.HandleFunc("PUT /api/comments/{chartID}", commentHandler.HandleUpsertComment)
	apiMux.HandleFunc("DELETE /api/comments/{chartID}", commentHandler.HandleDeleteComment)

	rootMux := http.NewServeMux()
	rootMux.Handle("/api/", apiMux)
	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Deals dashboard backend is running"})
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Server failed to start", "error", err)
		panic(err)
	}
}
