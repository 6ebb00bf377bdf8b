package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/RyanBlaney/sonido-sonar/logging"
)

// ErrNoConfidentMatch indicates search results did not meet the confidence threshold.
var ErrNoConfidentMatch = errors.New("no confident match")

const searchLimit = 5

func (c *Client) searchTrack(ctx context.Context, title string, artist string) (spotifyTrack, error) {
	searchURL, err := url.Parse(fmt.Sprintf("%s/search", c.baseURL))
	if err != nil {
		return spotifyTrack{}, fmt.Errorf("spotify adapter: invalid search url: %w", err)
	}

	queryTitle := fallbackIfEmpty(normalizeSearchInput(title), title)
	q := fmt.Sprintf("track:%s", queryTitle)
	if artist != "" {
		q += fmt.Sprintf(" artist:%s", fallbackIfEmpty(normalizeSearchInput(artist), artist))
	}

	query := searchURL.Query()
	query.Set("q", q)
	query.Set("type", "track")
	query.Set("limit", fmt.Sprint(searchLimit))
	searchURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL.String(), nil)
	if err != nil {
		return spotifyTrack{}, fmt.Errorf("spotify adapter: failed to create search request: %w", err)
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return spotifyTrack{}, fmt.Errorf("spotify adapter: search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return spotifyTrack{}, fmt.Errorf("spotify adapter: search status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return spotifyTrack{}, fmt.Errorf("spotify adapter: search decode error: %w", err)
	}

	items := body.Tracks.Items
	if len(items) > searchLimit {
		items = items[:searchLimit]
	}

	bestScore, bestIndex := 0.0, -1
	for i, candidate := range items {
		score, ok := trackMatchScore(title, artist, candidate)
		c.log.Debug("search candidate", logging.Fields{
			"artist": joinArtistNames(candidate),
			"title":  candidate.Name,
			"score":  score,
		})
		if ok && score > bestScore {
			bestScore, bestIndex = score, i
		}
	}

	if bestIndex == -1 {
		return spotifyTrack{}, fmt.Errorf("spotify adapter: title %q artist %q: %w", title, artist, ErrNoConfidentMatch)
	}
	return items[bestIndex], nil
}
