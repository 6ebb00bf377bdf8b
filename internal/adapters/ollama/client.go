// Package ollama provides an adapter for the Ollama LLM service.
// It infers coarse audio features by asking a local Ollama instance to
// describe a track by title and artist as structured JSON.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "deepseek-r1:8b"
	providerName   = "ollama"
)

const systemPrompt = "You are the Cadence audio feature estimator. Given a track title and artist, estimate its audio features.\n\nRules:\nOutput: Return ONLY a valid JSON object with the keys bpm, key, mode, energy, danceability, acousticness, instrumentalness, valence. No conversational text.\nbpm is beats per minute between 40 and 220.\nkey is one of C, C#, D, D#, E, F, F#, G, G#, A, A#, B.\nmode is 1 for major and 0 for minor.\nAll other values are between 0.0 and 1.0.\nExample: 'Title: Clair de Lune, Artist: Debussy' -> { \"bpm\": 66, \"key\": \"C#\", \"mode\": 1, \"energy\": 0.1, \"danceability\": 0.2, \"acousticness\": 0.99, \"instrumentalness\": 0.95, \"valence\": 0.3 }"

var _ ports.FeatureProvider = (*Client)(nil)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	log        logging.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// llmFeatures is the JSON object the model is asked to produce.
type llmFeatures struct {
	BPM              float64 `json:"bpm"`
	Key              string  `json:"key"`
	Mode             int     `json:"mode"`
	Energy           float64 `json:"energy"`
	Danceability     float64 `json:"danceability"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Valence          float64 `json:"valence"`
}

func NewClient(baseURL, model string, logger logging.Logger) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logger.WithFields(logging.Fields{"component": "ollama"}),
	}
}

// CoarseFeatures asks the model for the features of ref's title and artist.
func (c *Client) CoarseFeatures(ctx context.Context, ref domain.AudioRef) (domain.AudioFeatures, error) {
	features, err := c.infer(ctx, ref)
	if err != nil {
		return domain.AudioFeatures{}, &ports.InferenceError{Provider: providerName, TrackID: ref.TrackID, Err: err}
	}
	return features, nil
}

func (c *Client) infer(ctx context.Context, ref domain.AudioRef) (domain.AudioFeatures, error) {
	if strings.TrimSpace(ref.Title) == "" {
		return domain.AudioFeatures{}, fmt.Errorf("ollama: title required: %w", domain.ErrInvalidArgument)
	}

	payload := chatRequest{
		Model:  c.model,
		Stream: false,
		Format: "json",
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(ref)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.AudioFeatures{}, fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return domain.AudioFeatures{}, fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.AudioFeatures{}, fmt.Errorf("ollama: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.AudioFeatures{}, fmt.Errorf("ollama: unexpected status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.AudioFeatures{}, fmt.Errorf("ollama: decode response: %w", err)
	}
	if parsed.Error != "" {
		return domain.AudioFeatures{}, fmt.Errorf("ollama: %s", parsed.Error)
	}

	content := strings.TrimSpace(parsed.Message.Content)
	if content == "" {
		return domain.AudioFeatures{}, errors.New("ollama: empty response")
	}

	var raw llmFeatures
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return domain.AudioFeatures{}, fmt.Errorf("ollama: decode features: %w", err)
	}

	features := raw.toDomain()
	c.log.Debug("inferred features", logging.Fields{"title": ref.Title, "bpm": features.BPM, "key": features.Key})
	return features, nil
}

func userPrompt(ref domain.AudioRef) string {
	if ref.Artist == "" {
		return fmt.Sprintf("Title: %s", ref.Title)
	}
	return fmt.Sprintf("Title: %s, Artist: %s", ref.Title, ref.Artist)
}

// toDomain clamps model output into the feature ranges. An unrecognised key
// is dropped and an out-of-range tempo becomes unknown.
func (f llmFeatures) toDomain() domain.AudioFeatures {
	out := domain.AudioFeatures{
		Mode:             domain.ModeMajor,
		Energy:           clampScore(f.Energy),
		Danceability:     clampScore(f.Danceability),
		Acousticness:     clampScore(f.Acousticness),
		Instrumentalness: clampScore(f.Instrumentalness),
		Valence:          clampScore(f.Valence),
	}
	if f.BPM >= domain.MinBPM && f.BPM <= domain.MaxBPM {
		out.BPM = f.BPM
	}
	if key := strings.ToUpper(strings.TrimSpace(f.Key)); domain.IsPitchClass(key) {
		out.Key = key
	}
	if f.Mode == domain.ModeMinor {
		out.Mode = domain.ModeMinor
	}
	return out
}

func clampScore(v float64) float64 {
	return min(1, max(0, v))
}
