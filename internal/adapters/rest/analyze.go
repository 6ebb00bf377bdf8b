package rest

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

const (
	maxUploadBytes = 32 << 20
	maxJSONBytes   = 1 << 20
)

// AnalyzeAudio handles POST /analyze. A JSON body names the audio by URL and
// optional track metadata; an audio/mpeg body is analysed directly.
func (h *Handler) AnalyzeAudio(w http.ResponseWriter, r *http.Request) {
	var ref domain.AudioRef

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes)).Decode(&ref); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if ref.URL == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}
		if !isRemoteURL(ref.URL) {
			writeError(w, http.StatusBadRequest, "url must be an absolute http or https URL")
			return
		}
	case "audio/mpeg":
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "audio body too large")
			return
		}
		ref = domain.AudioRef{
			Data:    data,
			TrackID: r.URL.Query().Get("track_id"),
			Title:   r.URL.Query().Get("title"),
			Artist:  r.URL.Query().Get("artist"),
		}
	default:
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json or audio/mpeg")
		return
	}

	report, err := h.svc.AnalyzeAudioReport(r.Context(), ref)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// isRemoteURL reports whether raw is an absolute http(s) URL with a host.
func isRemoteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
