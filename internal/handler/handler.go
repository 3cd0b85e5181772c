// Package handler provides the HTTP API for GreenTracker.
package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ecospend/greentracker/internal/archive"
	"github.com/ecospend/greentracker/internal/metrics"
	"github.com/ecospend/greentracker/internal/ratelimit"
	"github.com/ecospend/greentracker/internal/service"
	"github.com/ecospend/greentracker/internal/session"
)

const defaultMaxUploadBytes = 10 << 20 // 10MB

// Handler wires the services onto HTTP routes.
type Handler struct {
	accounts *service.AccountService
	ledger   *service.LedgerService
	analysis *service.AnalysisService
	sessions *session.Manager
	archiver archive.Archiver
	limiter  ratelimit.Limiter
	metrics  *metrics.Metrics
	uploads  *uploadStore
	logger   zerolog.Logger

	maxUploadBytes int64
}

// Config contains the handler's dependencies.
type Config struct {
	Accounts *service.AccountService
	Ledger   *service.LedgerService
	Analysis *service.AnalysisService
	Sessions *session.Manager
	Archiver archive.Archiver
	Limiter  ratelimit.Limiter
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger

	// MaxUploadBytes bounds the accepted image size. Zero selects the
	// default of 10MB.
	MaxUploadBytes int64
}

// New creates a Handler.
func New(cfg Config) *Handler {
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	archiver := cfg.Archiver
	if archiver == nil {
		archiver = archive.Noop{}
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.NoopLimiter{}
	}

	return &Handler{
		accounts:       cfg.Accounts,
		ledger:         cfg.Ledger,
		analysis:       cfg.Analysis,
		sessions:       cfg.Sessions,
		archiver:       archiver,
		limiter:        limiter,
		metrics:        cfg.Metrics,
		uploads:        newUploadStore(),
		logger:         cfg.Logger.With().Str("component", "handler").Logger(),
		maxUploadBytes: maxUpload,
	}
}

// Routes returns the chi router for the API.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.observe)
	r.Use(h.rateLimit)

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/logout", h.handleLogout)
			r.Post("/upload", h.handleUpload)
			r.Post("/analyze", h.handleAnalyze)
			r.Get("/history", h.handleHistory)
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "malformed JSON body")
		return
	}

	if err := h.accounts.Register(r.Context(), req.Username, req.Password); err != nil {
		writeDomainError(w, err)
		return
	}

	h.metrics.Registrations.Inc()
	writeJSON(w, http.StatusCreated, map[string]string{"message": "registration successful"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "malformed JSON body")
		return
	}

	token, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.metrics.Logins.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameFrom(r.Context())
	if ok {
		h.uploads.clear(username)
	}
	// Tokens are stateless; the client discards its copy.
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	username, _ := usernameFrom(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "could not read request body")
		return
	}
	if int64(len(body)) > h.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "invalid_input", "image too large")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "empty request body")
		return
	}

	mimeType := http.DetectContentType(body)
	if mimeType != "image/png" && mimeType != "image/jpeg" {
		writeError(w, http.StatusUnsupportedMediaType, "invalid_input", "only PNG and JPEG images are accepted")
		return
	}

	h.uploads.set(username, body, mimeType)

	// Best effort: an archive failure never fails the upload.
	if key, err := h.archiver.Store(r.Context(), username, body, mimeType); err != nil {
		h.logger.Warn().Err(err).Str("username", username).Msg("receipt archive failed")
	} else if key != "" {
		h.logger.Debug().Str("username", username).Str("key", key).Msg("receipt archived")
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"pending":   true,
		"mime_type": mimeType,
		"bytes":     len(body),
	})
}

type analyzeResponse struct {
	CarbonScore float64 `json:"carbon_score"`
	OffsetCost  float64 `json:"offset_cost"`
	Timestamp   string  `json:"timestamp"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	username, _ := usernameFrom(r.Context())

	upload, ok := h.uploads.get(username)
	if !ok {
		h.metrics.Analyses.WithLabelValues(metrics.OutcomeError).Inc()
		writeError(w, http.StatusBadRequest, "no_pending_image", "upload an image first")
		return
	}

	entry, err := h.analysis.Analyze(r.Context(), username, upload.data, upload.mimeType)
	if err != nil {
		h.metrics.Analyses.WithLabelValues(analysisOutcome(err)).Inc()
		writeDomainError(w, err)
		return
	}

	h.metrics.Analyses.WithLabelValues(metrics.OutcomeOK).Inc()
	writeJSON(w, http.StatusOK, analyzeResponse{
		CarbonScore: entry.CarbonScore,
		OffsetCost:  entry.OffsetCost,
		Timestamp:   entry.Timestamp,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	username, _ := usernameFrom(r.Context())

	history, err := h.ledger.History(r.Context(), username)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username": username,
		"history":  history,
	})
}
