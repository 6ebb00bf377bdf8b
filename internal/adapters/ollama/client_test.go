package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RyanBlaney/sonido-sonar/logging"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
)

func TestClient_CoarseFeatures(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		responseBody string
		ref          domain.AudioRef
		want         domain.AudioFeatures
		wantErr      bool
	}{
		{
			name:         "Success",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"{\"bpm\":96,\"key\":\"d\",\"mode\":0,\"energy\":0.4,\"danceability\":0.5,\"acousticness\":0.7,\"instrumentalness\":0.1,\"valence\":0.3}"}}`,
			ref:          domain.AudioRef{TrackID: "t1", Title: "Song", Artist: "Artist"},
			want: domain.AudioFeatures{
				BPM: 96, Key: "D", Mode: domain.ModeMinor,
				Energy: 0.4, Danceability: 0.5, Acousticness: 0.7, Instrumentalness: 0.1, Valence: 0.3,
			},
		},
		{
			name:         "Clamps out of range output",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"{\"bpm\":400,\"key\":\"H\",\"mode\":7,\"energy\":1.4,\"valence\":-0.2}"}}`,
			ref:          domain.AudioRef{Title: "Song"},
			want:         domain.AudioFeatures{Mode: domain.ModeMajor, Energy: 1},
		},
		{
			name:         "Server error",
			status:       http.StatusInternalServerError,
			responseBody: `{"error":"bad"}`,
			ref:          domain.AudioRef{Title: "Song"},
			wantErr:      true,
		},
		{
			name:         "Model error",
			status:       http.StatusOK,
			responseBody: `{"error":"model not found"}`,
			ref:          domain.AudioRef{Title: "Song"},
			wantErr:      true,
		},
		{
			name:         "Not JSON content",
			status:       http.StatusOK,
			responseBody: `{"message":{"role":"assistant","content":"I think it is upbeat"}}`,
			ref:          domain.AudioRef{Title: "Song"},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRequest chatRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/chat" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				if r.Method != http.MethodPost {
					w.WriteHeader(http.StatusMethodNotAllowed)
					return
				}
				if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "", &logging.NoOpLogger{})
			got, err := client.CoarseFeatures(context.Background(), tt.ref)

			if (err != nil) != tt.wantErr {
				t.Fatalf("expected err=%v, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				var ie *ports.InferenceError
				if !errors.As(err, &ie) || ie.Provider != "ollama" {
					t.Fatalf("expected ollama InferenceError, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Fatalf("features: got %+v, want %+v", got, tt.want)
			}
			if gotRequest.Model != "deepseek-r1:8b" {
				t.Fatalf("expected model deepseek-r1:8b, got %q", gotRequest.Model)
			}
			if gotRequest.Format != "json" {
				t.Fatalf("expected format json, got %q", gotRequest.Format)
			}
			if len(gotRequest.Messages) != 2 {
				t.Fatalf("expected 2 messages, got %d", len(gotRequest.Messages))
			}
			if gotRequest.Messages[0].Role != "system" || gotRequest.Messages[0].Content != systemPrompt {
				t.Fatalf("system prompt mismatch")
			}
			if gotRequest.Messages[1].Role != "user" || gotRequest.Messages[1].Content != userPrompt(tt.ref) {
				t.Fatalf("user message mismatch: %q", gotRequest.Messages[1].Content)
			}
		})
	}
}

func TestClient_CoarseFeaturesRequiresTitle(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", &logging.NoOpLogger{})
	_, err := client.CoarseFeatures(context.Background(), domain.AudioRef{URL: "https://cdn.test/a.mp3"})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
