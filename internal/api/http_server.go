package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"adpulse/internal/config"
	"adpulse/internal/database"
	"adpulse/internal/domain"
	"adpulse/internal/export"
	"adpulse/internal/models"
	"adpulse/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// HTTPServer is the control surface of the scheduler process: status reads,
// manual validation/execution/rollback triggers and schedule management.
type HTTPServer struct {
	cfg        config.APIConfig
	repo       domain.Repository
	scheduler  domain.SchedulerCore
	validation domain.ValidationRunner
	execution  domain.ExecutionRunner
	rollback   domain.RollbackRunner
	exporter   *export.Exporter
	server     *http.Server
	auth       *HTTPAuth
	logger     zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	repo domain.Repository,
	scheduler domain.SchedulerCore,
	validation domain.ValidationRunner,
	execution domain.ExecutionRunner,
	rollback domain.RollbackRunner,
	exporter *export.Exporter,
	logger zerolog.Logger,
) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:        cfg,
		repo:       repo,
		scheduler:  scheduler,
		validation: validation,
		execution:  execution,
		rollback:   rollback,
		exporter:   exporter,
		logger:     logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/scheduler/status", srv.handleSchedulerStatus)
	mux.HandleFunc("/api/v1/accounts/", srv.handleAccounts)
	mux.HandleFunc("/api/v1/executions/", srv.handleExecutions)
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.scheduler.Status())
}

// handleAccounts routes /api/v1/accounts/{id}/{action}.
func (s *HTTPServer) handleAccounts(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/accounts/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	accountID, action := parts[0], parts[1]

	switch action {
	case "validate":
		s.handleValidate(w, r, accountID)
	case "executions":
		s.handleRunExecution(w, r, accountID)
	case "schedules":
		s.handleSchedules(w, r, accountID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleValidate(w http.ResponseWriter, r *http.Request, accountID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	result, err := s.validation.RunValidation(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.URL.Query().Get("export") == "true" {
		filePath, err := s.exporter.ExportValidationReport(result)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"result": result, "file_path": filePath})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleRunExecution(w http.ResponseWriter, r *http.Request, accountID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rec, err := s.execution.RunKeywordExecution(r.Context(), accountID, models.ExecutionTypeManual)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			writeError(w, http.StatusNotFound, "execution config not found")
		case errors.Is(err, service.ErrExecutionDisabled):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *HTTPServer) handleSchedules(w http.ResponseWriter, r *http.Request, accountID string) {
	switch r.Method {
	case http.MethodGet:
		schedules, err := s.repo.GetSchedules(r.Context(), accountID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"schedules": schedules})

	case http.MethodPost:
		type request struct {
			SyncType  string `json:"sync_type"`
			Frequency string `json:"frequency"`
			IsEnabled *bool  `json:"is_enabled"`
		}
		var body request
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if body.SyncType == "" {
			writeError(w, http.StatusBadRequest, "sync_type is required")
			return
		}

		// Reject unknown frequency labels before anything is stored.
		interval, err := models.ResolveFrequency(body.Frequency)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown frequency %q; valid: %s",
				body.Frequency, strings.Join(models.Frequencies(), ", ")))
			return
		}

		enabled := true
		if body.IsEnabled != nil {
			enabled = *body.IsEnabled
		}
		now := time.Now()
		next := now.Add(interval)
		schedule := &models.AccountSyncSchedule{
			AccountID: accountID,
			SyncType:  body.SyncType,
			Frequency: body.Frequency,
			IsEnabled: enabled,
			NextRunAt: &next,
		}
		if err := s.repo.CreateSchedule(r.Context(), schedule); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, schedule)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleExecutions routes /api/v1/executions/{id} and /api/v1/executions/{id}/rollback.
func (s *HTTPServer) handleExecutions(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/executions/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		s.handleGetExecution(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "rollback":
		s.handleRollback(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "export":
		s.handleExportExecution(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleExportExecution(w http.ResponseWriter, r *http.Request, executionID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rec, err := s.repo.GetExecution(r.Context(), executionID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "execution not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	details, err := s.repo.GetExecutionDetails(r.Context(), executionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filePath, err := s.exporter.ExportExecutionReport(rec, details)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file_path": filePath})
}

func (s *HTTPServer) handleGetExecution(w http.ResponseWriter, r *http.Request, executionID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rec, err := s.repo.GetExecution(r.Context(), executionID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "execution not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	details, err := s.repo.GetExecutionDetails(r.Context(), executionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"execution": rec, "details": details})
}

func (s *HTTPServer) handleRollback(w http.ResponseWriter, r *http.Request, executionID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	type request struct {
		Reason string `json:"reason"`
	}
	var body request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Reason) == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}

	rec, err := s.rollback.Rollback(r.Context(), executionID, body.Reason)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			writeError(w, http.StatusNotFound, "execution not found")
		case errors.Is(err, service.ErrRollbackIneligible):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
