package rest

import (
	"encoding/json"
	"net/http"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

type trackResponse struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Artist           string   `json:"artist"`
	Album            string   `json:"album,omitempty"`
	Duration         float64  `json:"duration,omitempty"`
	ISRC             string   `json:"isrc,omitempty"`
	CoverURL         string   `json:"cover_url,omitempty"`
	PreviewURL       string   `json:"preview_url,omitempty"`
	Year             *int     `json:"year,omitempty"`
	Genres           []string `json:"genres,omitempty"`
	BPM              *float64 `json:"bpm,omitempty"`
	Key              string   `json:"key,omitempty"`
	Mode             *int     `json:"mode,omitempty"`
	Energy           *float64 `json:"energy,omitempty"`
	Danceability     *float64 `json:"danceability,omitempty"`
	Valence          *float64 `json:"valence,omitempty"`
	Acousticness     *float64 `json:"acousticness,omitempty"`
	Instrumentalness *float64 `json:"instrumentalness,omitempty"`
}

type tracksResponse struct {
	Tracks []trackResponse `json:"tracks"`
}

func toTracksResponse(tracks []domain.Track) tracksResponse {
	out := make([]trackResponse, len(tracks))
	for i, t := range tracks {
		out[i] = trackResponse{
			ID:               t.ID,
			Title:            t.Title,
			Artist:           t.Artist,
			Album:            t.Album,
			Duration:         t.Duration,
			ISRC:             t.ISRC,
			CoverURL:         t.CoverURL,
			PreviewURL:       t.PreviewURL,
			Year:             t.Year,
			Genres:           t.Genres,
			BPM:              t.BPM,
			Key:              t.Key,
			Mode:             t.Mode,
			Energy:           t.Energy,
			Danceability:     t.Danceability,
			Valence:          t.Valence,
			Acousticness:     t.Acousticness,
			Instrumentalness: t.Instrumentalness,
		}
	}
	return tracksResponse{Tracks: out}
}

// PlaylistStats handles GET /playlists/{id}/stats
func (h *Handler) PlaylistStats(w http.ResponseWriter, r *http.Request) {
	playlistID := r.PathValue("id")
	if playlistID == "" {
		writeError(w, http.StatusBadRequest, "playlist id is required")
		return
	}

	stats, err := h.svc.AnalyzePlaylist(r.Context(), playlistID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// FilterPlaylist handles POST /playlists/{id}/filter
func (h *Handler) FilterPlaylist(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var criteria domain.FilterCriteria
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes)).Decode(&criteria); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tracks, err := h.svc.FilterPlaylist(r.Context(), r.PathValue("id"), criteria)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTracksResponse(tracks))
}

type diversifyRequest struct {
	Target *float64 `json:"target"`
}

// DiversifyPlaylist handles POST /playlists/{id}/diversify
func (h *Handler) DiversifyPlaylist(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req diversifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Target == nil {
		writeError(w, http.StatusBadRequest, "target is required")
		return
	}

	tracks, err := h.svc.DiversifyPlaylist(r.Context(), r.PathValue("id"), *req.Target)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTracksResponse(tracks))
}
