package ollama

import (
	"context"
	"os"
	"testing"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

// TestClient_CoarseFeatures_Integration tests against a live Ollama instance.
// This test is skipped unless RUN_AI_TESTS=true is set.
func TestClient_CoarseFeatures_Integration(t *testing.T) {
	if os.Getenv("RUN_AI_TESTS") != "true" {
		t.Skip("Skipping AI-dependent test (set RUN_AI_TESTS=true to enable)")
	}

	ollamaHost := os.Getenv("OLLAMA_HOST")
	if ollamaHost == "" {
		ollamaHost = "http://localhost:11434"
	}

	client := NewClient(ollamaHost, os.Getenv("OLLAMA_MODEL"), nil)

	tests := []struct {
		name string
		ref  domain.AudioRef
	}{
		{
			name: "Well known pop track",
			ref:  domain.AudioRef{Title: "Happy", Artist: "Pharrell Williams"},
		},
		{
			name: "Classical piece",
			ref:  domain.AudioRef{Title: "Clair de Lune", Artist: "Claude Debussy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.CoarseFeatures(context.Background(), tt.ref)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.BPM != 0 && (got.BPM < domain.MinBPM || got.BPM > domain.MaxBPM) {
				t.Errorf("bpm out of range: %v", got.BPM)
			}
			if got.Key != "" && !domain.IsPitchClass(got.Key) {
				t.Errorf("unexpected key %q", got.Key)
			}
			for name, v := range map[string]float64{
				"energy":  got.Energy,
				"valence": got.Valence,
			} {
				if v < 0 || v > 1 {
					t.Errorf("%s out of range: %v", name, v)
				}
			}
			t.Logf("features: %+v", got)
		})
	}
}
