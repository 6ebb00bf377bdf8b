package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/RyanBlaney/sonido-sonar/logging"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
)

const providerName = "spotify"

// CoarseFeatures returns Spotify's audio features for ref. A Spotify track ID
// is used directly; otherwise the track is resolved by title and artist.
// Every failure is a *ports.InferenceError.
func (c *Client) CoarseFeatures(ctx context.Context, ref domain.AudioRef) (domain.AudioFeatures, error) {
	id := ref.TrackID
	if !isSpotifyID(id) {
		if ref.Title == "" {
			return domain.AudioFeatures{}, c.inferenceError(ref.TrackID,
				fmt.Errorf("no spotify id or title: %w", domain.ErrInvalidArgument))
		}
		track, err := c.searchTrack(ctx, ref.Title, ref.Artist)
		if err != nil {
			return domain.AudioFeatures{}, c.inferenceError(ref.TrackID, err)
		}
		id = track.ID
	}

	features, err := c.getAudioFeatures(ctx, id)
	if err != nil {
		return domain.AudioFeatures{}, c.inferenceError(id, err)
	}
	return features.toDomain(), nil
}

func (c *Client) getAudioFeatures(ctx context.Context, id string) (spotifyAudioFeatures, error) {
	featuresURL := fmt.Sprintf("%s/audio-features/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, featuresURL, nil)
	if err != nil {
		return spotifyAudioFeatures{}, fmt.Errorf("spotify adapter: failed to create features request: %w", err)
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return spotifyAudioFeatures{}, fmt.Errorf("spotify adapter: features request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return spotifyAudioFeatures{}, fmt.Errorf("spotify adapter: features for %s: %w", id, domain.ErrNotFound)
	default:
		return spotifyAudioFeatures{}, fmt.Errorf("spotify adapter: features status %d", resp.StatusCode)
	}

	var features spotifyAudioFeatures
	if err := json.NewDecoder(resp.Body).Decode(&features); err != nil {
		return spotifyAudioFeatures{}, fmt.Errorf("spotify adapter: features decode error: %w", err)
	}
	c.log.Debug("fetched audio features", logging.Fields{"track_id": id, "tempo": features.Tempo})
	return features, nil
}

func (c *Client) inferenceError(trackID string, err error) error {
	var ie *ports.InferenceError
	if errors.As(err, &ie) {
		return err
	}
	return &ports.InferenceError{Provider: providerName, TrackID: trackID, Err: err}
}

// isSpotifyID reports whether id has the shape of a base-62 Spotify track ID.
func isSpotifyID(id string) bool {
	if len(id) != 22 {
		return false
	}
	for _, r := range id {
		if !('0' <= r && r <= '9' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z') {
			return false
		}
	}
	return true
}
