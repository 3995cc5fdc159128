package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pythonsolar/harumiki-farm-v2/pkg/cache"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/export"
	"github.com/pythonsolar/harumiki-farm-v2/pkg/httpx"
)

var startTime = time.Now()

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string      `json:"status"`
	Version string      `json:"version"`
	Uptime  string      `json:"uptime"`
	Cache   cache.Stats `json:"cache"`
}

// handleHealth returns service health status.
func handleHealth(store cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondJSON(w, http.StatusOK, HealthResponse{
			Status:  "healthy",
			Version: "1.0.0",
			Uptime:  time.Since(startTime).String(),
			Cache:   store.Stats(),
		})
	}
}

// SetupRoutes configures all HTTP routes for the server.
func SetupRoutes(
	router *mux.Router,
	handler *Handler,
	exportHandler *export.Handler,
	store cache.Cache,
	hub *Hub,
	port string,
) {
	// CORS middleware for dashboard access
	router.Use(corsMiddleware(port))

	api := router.PathPrefix("/api").Subrouter()

	// Chart data and live readings
	api.HandleFunc("/chart-data", handler.HandleChartData).Methods("GET")
	api.HandleFunc("/latest", handler.HandleLatest).Methods("GET")

	// Metadata and health
	api.HandleFunc("/metrics/list", handler.HandleMetricsList).Methods("GET")
	api.HandleFunc("/health", handleHealth(store)).Methods("GET")

	// WebSocket for live updates
	api.HandleFunc("/ws", handler.HandleWebSocket(hub)).Methods("GET")

	// Export
	api.HandleFunc("/export", exportHandler.HandleExport).Methods("GET")
}

// corsMiddleware creates CORS middleware that restricts to localhost origins only.
func corsMiddleware(port string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowedOrigins := []string{
				"http://localhost:" + port,
				"http://127.0.0.1:" + port,
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			}

			allowed := false
			for _, allowedOrigin := range allowedOrigins {
				if origin == allowedOrigin {
					allowed = true
					break
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
