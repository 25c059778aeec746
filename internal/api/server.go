// Package api exposes the intake session over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loan-intake/internal/chat"
	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/intake"
	"loan-intake/internal/models"
)

// Checker reports whether a dependency is ready to serve.
type Checker func(ctx context.Context) error

type Server struct {
	router  *chi.Mux
	chat    *chat.Service
	checks  map[string]Checker
	logger  logger.Logger
	httpSrv *http.Server
}

func NewServer(svc *chat.Service, checks map[string]Checker, log logger.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(2 * time.Minute))

	s := &Server{
		router: router,
		chat:   svc,
		checks: checks,
		logger: log.WithFields(map[string]interface{}{"component": "api"}),
	}

	router.Get("/health", s.health)
	router.Get("/ready", s.ready)
	router.Handle("/metrics", promhttp.Handler())

	// Without a session only the operational endpoints are served.
	if svc != nil {
		router.Route("/api/v1", func(r chi.Router) {
			r.Post("/turns", s.postTurn)
			r.Get("/application", s.getApplication)
			r.Get("/transcript", s.getTranscript)
			r.Post("/reset", s.postReset)
		})
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. http.ErrServerClosed is not an error.
func (s *Server) Start(port int) error {
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("API server starting", map[string]interface{}{"addr": s.httpSrv.Addr})
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

type turnRequest struct {
	Message string `json:"message"`
}

type applicationResponse struct {
	ApplicationID string                `json:"applicationId"`
	Application   *models.Application   `json:"application"`
	Panel         []intake.PanelSection `json:"panel"`
	Complete      bool                  `json:"complete"`
	NextPrompt    string                `json:"nextPrompt,omitempty"`
}

func (s *Server) postTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.NewInvalidTurnInputError(fmt.Sprintf("invalid JSON: %v", err)))
		return
	}

	reply, err := s.chat.Send(r.Context(), req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) getApplication(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.applicationView(s.chat.Snapshot()))
}

func (s *Server) getTranscript(w http.ResponseWriter, r *http.Request) {
	snap := s.chat.Snapshot()
	messages := snap.Transcript
	if messages == nil {
		messages = []models.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"applicationId": snap.ApplicationID,
		"messages":      messages,
	})
}

func (s *Server) postReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.applicationView(s.chat.Reset()))
}

func (s *Server) applicationView(snap chat.Snapshot) applicationResponse {
	prompt, missing := intake.NextPrompt(snap.Application)
	return applicationResponse{
		ApplicationID: snap.ApplicationID,
		Application:   snap.Application,
		Panel:         intake.Panel(snap.Application),
		Complete:      !missing,
		NextPrompt:    prompt,
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	failures := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		s.logger.Warn("Readiness check failed", map[string]interface{}{"failures": failures})
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "not_ready",
			"failures": failures,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	stdErr, ok := apperrors.AsStandardError(err)
	if !ok {
		s.logger.Error("Unhandled request error", map[string]interface{}{"error": err})
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"code":    string(apperrors.ErrCodeInternal),
			"message": "internal error",
		})
		return
	}
	writeJSON(w, statusFor(stdErr.Code), map[string]string{
		"code":    string(stdErr.Code),
		"message": stdErr.Message,
		"details": stdErr.Details,
	})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidTurnInput, apperrors.ErrCodeInvalidApplicationState:
		return http.StatusBadRequest
	case apperrors.ErrCodeApplicationIncomplete:
		return http.StatusConflict
	case apperrors.ErrCodeOracleUnavailable, apperrors.ErrCodeOracleTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
