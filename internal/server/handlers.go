package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"seosuite/internal/core"
	"seosuite/internal/store"
)

// HealthResponse is the /health body
type HealthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime"`
	Checks map[string]string `json:"checks"`
}

var serverStartTime = time.Now()

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok"}
	uptime := time.Since(serverStartTime).Round(time.Second).String()

	if err := s.deps.Store.Ping(r.Context()); err != nil {
		s.log.Error("Health check failed", "error", err)
		checks["database"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Uptime: uptime, Checks: checks})
		return
	}

	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Uptime: uptime, Checks: checks})
}

// decodeJSON reads the request body into v, reporting a 400 on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes an error envelope
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"status":  status,
			"message": message,
		},
	})
}

// respondFailure maps err to a status code and writes it. Unexpected errors
// are logged and hidden from the client.
func (s *Server) respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message = "Internal server error"
	}
	s.respondError(w, status, message)
}

func statusFor(err error) int {
	switch {
	case core.IsValidation(err), core.IsConfiguration(err):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case core.IsFetch(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
