package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/RyanBlaney/sonido-sonar/logging"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
	"github.com/ewilliams-labs/cadence/internal/core/services"
)

// --- Mocks ---

// The handler takes a concrete *services.Analyzer, so tests build a real
// service on top of mock ports.

type mockStore struct {
	playlists map[string][]domain.Track
	err       error
}

func (m *mockStore) GetPlaylistTracks(ctx context.Context, id string) ([]domain.Track, error) {
	if m.err != nil {
		return nil, m.err
	}
	tracks, ok := m.playlists[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return tracks, nil
}

type mockDecoder struct {
	mu      sync.Mutex
	samples domain.Samples
	err     error
	last    domain.AudioRef
}

func (m *mockDecoder) Decode(ctx context.Context, ref domain.AudioRef) (domain.Samples, error) {
	m.mu.Lock()
	m.last = ref
	m.mu.Unlock()
	if m.err != nil {
		return domain.Samples{}, m.err
	}
	return m.samples, nil
}

func clickTrack(seconds float64) domain.Samples {
	const rate = domain.DefaultSampleRate
	data := make([]float64, int(seconds*rate))
	for start := 0; start < len(data); start += 43 * 512 {
		for i := start; i < start+32 && i < len(data); i++ {
			data[i] = 1
		}
	}
	return domain.Samples{Data: data, SampleRate: rate}
}

func fixtureTracks() []domain.Track {
	return []domain.Track{
		{ID: "a1", Title: "One", Artist: "A", Duration: 200, BPM: domain.Float(100), Key: "C", Mode: domain.Int(1)},
		{ID: "a2", Title: "Two", Artist: "A", Duration: 180, BPM: domain.Float(140), Key: "G", Mode: domain.Int(1)},
		{ID: "b1", Title: "Three", Artist: "B", Duration: 240, BPM: domain.Float(90), Key: "A", Mode: domain.Int(0)},
	}
}

func newTestHandler(store *mockStore, decoder *mockDecoder) *Handler {
	if store == nil {
		store = &mockStore{playlists: map[string][]domain.Track{
			"p1":    fixtureTracks(),
			"empty": {},
		}}
	}
	if decoder == nil {
		decoder = &mockDecoder{samples: clickTrack(6)}
	}
	noop := &logging.NoOpLogger{}
	svc := services.NewAnalyzer(decoder, nil, store, services.WithLogger(noop))
	return NewHandler(svc, noop)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

// --- Tests ---

func TestHealthCheck(t *testing.T) {
	h := newTestHandler(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestPlaylistStats(t *testing.T) {
	tests := []struct {
		name       string
		store      *mockStore
		playlistID string
		wantStatus int
		wantCode   string
	}{
		{name: "Success", playlistID: "p1", wantStatus: http.StatusOK},
		{name: "Unknown Playlist", playlistID: "missing", wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "Empty Playlist", playlistID: "empty", wantStatus: http.StatusBadRequest, wantCode: "NO_TRACKS"},
		{
			name:       "Store Failure",
			store:      &mockStore{err: errors.New("disk on fire")},
			playlistID: "p1",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(tt.store, nil)
			req := httptest.NewRequest(http.MethodGet, "/playlists/"+tt.playlistID+"/stats", nil)
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				if got := decodeError(t, rr).Code; got != tt.wantCode {
					t.Errorf("expected code %q, got %q", tt.wantCode, got)
				}
				return
			}

			var stats domain.PlaylistStats
			if err := json.NewDecoder(rr.Body).Decode(&stats); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if stats.TrackCount != 3 {
				t.Errorf("expected 3 tracks, got %d", stats.TrackCount)
			}
			if stats.TotalDuration != 620 {
				t.Errorf("expected total duration 620, got %v", stats.TotalDuration)
			}
			if stats.BPMRange.Min != 90 || stats.BPMRange.Max != 140 {
				t.Errorf("unexpected bpm range %+v", stats.BPMRange)
			}
		})
	}
}

func TestFilterPlaylist(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantIDs     []string
	}{
		{
			name:        "BPM Range",
			contentType: "application/json",
			body:        `{"bpm":{"min":95,"max":150}}`,
			wantStatus:  http.StatusOK,
			wantIDs:     []string{"a1", "a2"},
		},
		{
			name:        "Minor Keys",
			contentType: "application/json; charset=utf-8",
			body:        `{"keys":["A minor"]}`,
			wantStatus:  http.StatusOK,
			wantIDs:     []string{"b1"},
		},
		{
			name:        "No Criteria",
			contentType: "application/json",
			body:        `{}`,
			wantStatus:  http.StatusOK,
			wantIDs:     []string{"a1", "a2", "b1"},
		},
		{
			name:        "Inverted Range",
			contentType: "application/json",
			body:        `{"bpm":{"min":150,"max":95}}`,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "Bad JSON",
			contentType: "application/json",
			body:        `{"bpm":`,
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "Wrong Content Type",
			contentType: "text/plain",
			body:        `{}`,
			wantStatus:  http.StatusUnsupportedMediaType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(nil, nil)
			req := httptest.NewRequest(http.MethodPost, "/playlists/p1/filter", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp tracksResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(resp.Tracks) != len(tt.wantIDs) {
				t.Fatalf("expected %d tracks, got %d", len(tt.wantIDs), len(resp.Tracks))
			}
			for i, id := range tt.wantIDs {
				if resp.Tracks[i].ID != id {
					t.Errorf("track %d: expected %s, got %s", i, id, resp.Tracks[i].ID)
				}
			}
		})
	}
}

func TestDiversifyPlaylist(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantFirst   string
	}{
		{name: "Full Diversity", contentType: "application/json", body: `{"target":1}`, wantStatus: http.StatusOK, wantFirst: "b1"},
		{name: "Missing Target", contentType: "application/json", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "Bad JSON", contentType: "application/json", body: `nope`, wantStatus: http.StatusBadRequest},
		{name: "Wrong Content Type", contentType: "text/html", body: `{"target":1}`, wantStatus: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(nil, nil)
			req := httptest.NewRequest(http.MethodPost, "/playlists/p1/diversify", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp tracksResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(resp.Tracks) != 3 {
				t.Fatalf("expected 3 tracks, got %d", len(resp.Tracks))
			}
			if resp.Tracks[0].ID != tt.wantFirst {
				t.Errorf("expected %s first, got %s", tt.wantFirst, resp.Tracks[0].ID)
			}
		})
	}
}

func TestAnalyzeAudio_JSON(t *testing.T) {
	tests := []struct {
		name       string
		decoder    *mockDecoder
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "Success",
			body:       `{"url":"http://example.com/a.mp3","track_id":"t1"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "Missing URL",
			body:       `{"title":"Song"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Decode Failure",
			decoder:    &mockDecoder{err: errors.New("bad frame")},
			body:       `{"url":"http://example.com/a.mp3"}`,
			wantStatus: http.StatusBadGateway,
			wantCode:   "DECODE_FAILED",
		},
		{
			name:       "Empty Signal",
			decoder:    &mockDecoder{samples: domain.Samples{SampleRate: domain.DefaultSampleRate}},
			body:       `{"url":"http://example.com/a.mp3"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "EMPTY_SIGNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(nil, tt.decoder)
			req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				if tt.wantCode != "" {
					if got := decodeError(t, rr).Code; got != tt.wantCode {
						t.Errorf("expected code %q, got %q", tt.wantCode, got)
					}
				}
				return
			}

			var report services.Report
			if err := json.NewDecoder(rr.Body).Decode(&report); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if report.Tempo.BPM < domain.MinBPM || report.Tempo.BPM > domain.MaxBPM {
				t.Errorf("bpm %v outside [%v, %v]", report.Tempo.BPM, domain.MinBPM, domain.MaxBPM)
			}
			if !domain.IsPitchClass(report.Key.Key) {
				t.Errorf("unexpected key %q", report.Key.Key)
			}
			if report.Duration <= 0 {
				t.Errorf("expected positive duration, got %v", report.Duration)
			}
		})
	}
}

func TestAnalyzeAudio_RejectsNonRemoteURL(t *testing.T) {
	urls := []string{
		"/etc/passwd",
		"song.mp3",
		"file:///etc/passwd",
		"ftp://example.com/a.mp3",
		"http:///no-host.mp3",
	}

	for _, u := range urls {
		t.Run(u, func(t *testing.T) {
			decoder := &mockDecoder{samples: clickTrack(6)}
			h := newTestHandler(nil, decoder)
			body, _ := json.Marshal(map[string]string{"url": u})
			req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
			decoder.mu.Lock()
			defer decoder.mu.Unlock()
			if decoder.last.URL != "" {
				t.Errorf("decoder should not be called, got %q", decoder.last.URL)
			}
		})
	}
}

func TestJSONBodyLimit(t *testing.T) {
	padding := strings.Repeat(" ", maxJSONBytes)
	tests := []struct {
		name string
		path string
		body string
	}{
		{"analyze", "/analyze", `{"url":"http://example.com/a.mp3"` + padding + `}`},
		{"filter", "/playlists/p1/filter", `{"keys":["C"]` + padding + `}`},
		{"diversify", "/playlists/p1/diversify", `{"target":0.5` + padding + `}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoder := &mockDecoder{samples: clickTrack(6)}
			h := newTestHandler(nil, decoder)
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			decoder.mu.Lock()
			defer decoder.mu.Unlock()
			if decoder.last.URL != "" {
				t.Errorf("decoder should not be called for an oversized body")
			}
		})
	}
}

func TestAnalyzeAudio_Upload(t *testing.T) {
	decoder := &mockDecoder{samples: clickTrack(6)}
	h := newTestHandler(nil, decoder)

	payload := []byte("ID3 not really audio")
	req := httptest.NewRequest(http.MethodPost, "/analyze?track_id=t9&title=Song", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "audio/mpeg")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	decoder.mu.Lock()
	defer decoder.mu.Unlock()
	if !bytes.Equal(decoder.last.Data, payload) {
		t.Errorf("decoder did not receive the uploaded body")
	}
	if decoder.last.TrackID != "t9" || decoder.last.Title != "Song" {
		t.Errorf("unexpected ref metadata %+v", decoder.last)
	}
}

func TestAnalyzeAudio_UnsupportedMediaType(t *testing.T) {
	h := newTestHandler(nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rr.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"invalid", domain.ErrInvalidArgument, http.StatusBadRequest},
		{"no tracks", domain.ErrNoTracks, http.StatusBadRequest},
		{"decode", &ports.DecodeError{Source: "x", Err: errors.New("boom")}, http.StatusBadGateway},
		{"inference", &ports.InferenceError{Provider: "spotify", Err: domain.ErrNotFound}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
