package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

// trackRecord is the file and output form of a track.
type trackRecord struct {
	ID               string   `json:"id,omitempty" yaml:"id,omitempty"`
	Title            string   `json:"title" yaml:"title"`
	Artist           string   `json:"artist" yaml:"artist"`
	Album            string   `json:"album,omitempty" yaml:"album,omitempty"`
	Duration         float64  `json:"duration,omitempty" yaml:"duration,omitempty"`
	ISRC             string   `json:"isrc,omitempty" yaml:"isrc,omitempty"`
	CoverURL         string   `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`
	PreviewURL       string   `json:"preview_url,omitempty" yaml:"preview_url,omitempty"`
	Year             *int     `json:"year,omitempty" yaml:"year,omitempty"`
	Genres           []string `json:"genres,omitempty" yaml:"genres,omitempty"`
	BPM              *float64 `json:"bpm,omitempty" yaml:"bpm,omitempty"`
	Key              string   `json:"key,omitempty" yaml:"key,omitempty"`
	Mode             *int     `json:"mode,omitempty" yaml:"mode,omitempty"`
	Energy           *float64 `json:"energy,omitempty" yaml:"energy,omitempty"`
	Danceability     *float64 `json:"danceability,omitempty" yaml:"danceability,omitempty"`
	Valence          *float64 `json:"valence,omitempty" yaml:"valence,omitempty"`
	Acousticness     *float64 `json:"acousticness,omitempty" yaml:"acousticness,omitempty"`
	Instrumentalness *float64 `json:"instrumentalness,omitempty" yaml:"instrumentalness,omitempty"`
}

func (r trackRecord) toDomain() domain.Track {
	return domain.Track{
		ID:               r.ID,
		Title:            r.Title,
		Artist:           r.Artist,
		Album:            r.Album,
		Duration:         r.Duration,
		ISRC:             r.ISRC,
		CoverURL:         r.CoverURL,
		PreviewURL:       r.PreviewURL,
		Year:             r.Year,
		Genres:           r.Genres,
		BPM:              r.BPM,
		Key:              r.Key,
		Mode:             r.Mode,
		Energy:           r.Energy,
		Danceability:     r.Danceability,
		Valence:          r.Valence,
		Acousticness:     r.Acousticness,
		Instrumentalness: r.Instrumentalness,
	}
}

func toRecords(tracks []domain.Track) []trackRecord {
	out := make([]trackRecord, len(tracks))
	for i, t := range tracks {
		out[i] = trackRecord{
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
	return out
}

func (a *app) printTracks(w io.Writer, tracks []domain.Track) error {
	return a.render(w, toRecords(tracks), func(w io.Writer) error {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"#", "ID", "Title", "Artist", "BPM", "Key", "Year", "Genres"})
		for i, t := range tracks {
			row := []string{
				strconv.Itoa(i + 1),
				t.ID,
				t.Title,
				t.Artist,
				formatOptionalFloat(t.BPM, 1),
				trackKey(t),
				formatOptionalInt(t.Year),
				strings.Join(t.Genres, ", "),
			}
			if err := table.Append(row); err != nil {
				return err
			}
		}
		return table.Render()
	})
}

func trackKey(t domain.Track) string {
	if t.Key == "" {
		return "-"
	}
	if t.Mode == nil {
		return t.Key
	}
	return domain.KeyName(t.Key, *t.Mode)
}

func formatOptionalFloat(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func formatDuration(seconds float64) string {
	total := int(seconds + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
