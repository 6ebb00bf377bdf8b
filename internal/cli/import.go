package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

// playlistFile is the YAML import format.
type playlistFile struct {
	ID     string        `yaml:"id"`
	Name   string        `yaml:"name"`
	Tracks []trackRecord `yaml:"tracks"`
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Store a playlist described in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			playlist, skipped, err := readPlaylistFile(args[0])
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Save(cmd.Context(), *playlist); err != nil {
				return fmt.Errorf("save playlist %s: %w", playlist.ID, err)
			}
			a.log.Info("imported playlist", logging.Fields{
				"playlist_id": playlist.ID,
				"tracks":      len(playlist.Tracks),
				"skipped":     skipped,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%d tracks)\n", playlist.ID, len(playlist.Tracks))
			return nil
		},
	}
}

// readPlaylistFile parses path into a playlist. Tracks repeating an ISRC
// already in the playlist are skipped and counted.
func readPlaylistFile(path string) (*domain.Playlist, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read playlist file: %w", err)
	}
	var file playlistFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, 0, fmt.Errorf("parse playlist file %s: %w", path, err)
	}

	playlist, err := domain.NewPlaylist(file.ID, file.Name)
	if err != nil {
		return nil, 0, fmt.Errorf("playlist name is required: %w", err)
	}
	skipped := 0
	for i, rec := range file.Tracks {
		if rec.Title == "" || rec.Artist == "" {
			return nil, 0, fmt.Errorf("track %d: title and artist are required: %w", i+1, domain.ErrInvalidArgument)
		}
		if rec.Key != "" && !domain.IsPitchClass(rec.Key) {
			return nil, 0, fmt.Errorf("track %d: unknown key %q: %w", i+1, rec.Key, domain.ErrInvalidArgument)
		}
		if err := playlist.AddTrack(rec.toDomain()); err != nil {
			if errors.Is(err, domain.ErrDuplicateISRC) {
				skipped++
				continue
			}
			return nil, 0, err
		}
	}
	return playlist, skipped, nil
}
