package rest

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/RyanBlaney/sonido-sonar/logging"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
	"github.com/ewilliams-labs/cadence/internal/core/services"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc    *services.Analyzer
	router *http.ServeMux
	log    logging.Logger
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc *services.Analyzer, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	h := &Handler{
		svc:    svc,
		router: http.NewServeMux(),
		log:    logger.WithFields(logging.Fields{"component": "rest"}),
	}

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)
	h.router.HandleFunc("GET /playlists/{id}/stats", h.PlaylistStats)
	h.router.HandleFunc("POST /playlists/{id}/filter", h.FilterPlaylist)
	h.router.HandleFunc("POST /playlists/{id}/diversify", h.DiversifyPlaylist)
	h.router.HandleFunc("POST /analyze", h.AnalyzeAudio)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeErrorWithCode(w, status, message, "")
}

func writeErrorWithCode(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeServiceError maps a service error onto a status and error code.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(err, "request failed", logging.Fields{"status": status})
	}
	writeErrorWithCode(w, status, err.Error(), code)
}

func statusFor(err error) (int, string) {
	var decodeErr *ports.DecodeError
	var inferErr *ports.InferenceError
	switch {
	case errors.Is(err, domain.ErrNoTracks):
		return http.StatusBadRequest, "NO_TRACKS"
	case errors.Is(err, domain.ErrEmptySignal):
		return http.StatusBadRequest, "EMPTY_SIGNAL"
	case errors.As(err, &decodeErr):
		return http.StatusBadGateway, "DECODE_FAILED"
	case errors.As(err, &inferErr):
		return http.StatusBadGateway, "INFERENCE_FAILED"
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	}
	return http.StatusInternalServerError, ""
}

func isJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
