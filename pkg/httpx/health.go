package httpx

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// HealthCheck handles GET /health by pinging the database
func HealthCheck(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			RespondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Data:    map[string]string{"status": "unhealthy"},
				Error:   err.Error(),
			})
			return
		}

		RespondJSON(w, http.StatusOK, Response{Success: true, Data: map[string]string{"status": "healthy"}})
	}
}

// RegisterHealthCheck registers the health check endpoint
func RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", HealthCheck(db)).Methods("GET")
}
