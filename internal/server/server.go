// Package server exposes the snapshot jobs over HTTP for an external
// scheduler. Only authenticated POSTs are accepted; every response, success
// or failure, is a JSON envelope with a success flag and timestamp.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"crypto-networth-go/internal/snapshot"
)

type Server struct {
	portfolioJob *snapshot.PortfolioJob
	netWorthJob  *snapshot.NetWorthJob
	authToken    string
	router       chi.Router
}

func New(portfolioJob *snapshot.PortfolioJob, netWorthJob *snapshot.NetWorthJob, authToken string) *Server {
	s := &Server{
		portfolioJob: portfolioJob,
		netWorthJob:  netWorthJob,
		authToken:    authToken,
	}

	r := chi.NewRouter()
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/jobs/portfolio-snapshot", s.handlePortfolioSnapshot)
		r.Post("/jobs/net-worth-snapshot", s.handleNetWorthSnapshot)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requireAuth checks the bearer token on every job request. Missing or
// mismatched credentials are indistinguishable to the caller.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			zap.L().Warn("Rejected snapshot request with invalid token", zap.String("path", r.URL.Path))
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePortfolioSnapshot(w http.ResponseWriter, r *http.Request) {
	summary, err := s.portfolioJob.Run(r.Context(), today())
	if err != nil {
		zap.L().Error("Portfolio snapshot job failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeSuccess(w, summary)
}

func (s *Server) handleNetWorthSnapshot(w http.ResponseWriter, r *http.Request) {
	summary, err := s.netWorthJob.Run(r.Context(), today())
	if err != nil {
		zap.L().Error("Net worth snapshot job failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeSuccess(w, summary)
}

// today is the snapshot date of an externally triggered run, the server's
// current calendar date in UTC.
func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

type errorEnvelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorEnvelope{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		zap.L().Warn("Failed to encode error response", zap.Error(err))
	}
}

// writeSuccess flattens the job summary into the success envelope so the
// scheduler sees {success, ...summary fields, timestamp}.
func writeSuccess(w http.ResponseWriter, summary any) {
	payload := map[string]any{
		"success":   true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	encoded, err := json.Marshal(summary)
	if err == nil {
		var fields map[string]any
		if err := json.Unmarshal(encoded, &fields); err == nil {
			for k, v := range fields {
				payload[k] = v
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("Failed to encode success response", zap.Error(err))
	}
}
