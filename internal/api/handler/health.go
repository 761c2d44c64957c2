package handler

import (
	"net/http"

	"github.com/exobase-inc/exo-api/internal/api/response"
	"github.com/exobase-inc/exo-api/internal/repository/mongo"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including document store
// connectivity
func ReadyCheck(db *mongo.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "document store not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
