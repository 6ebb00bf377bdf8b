// Package sqlite provides a SQLite-backed implementation of the track store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/cadence/internal/core/domain"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
)

var _ ports.PlaylistRepository = (*Adapter)(nil)

// Adapter implements the repository port for SQLite
type Adapter struct {
	db *sql.DB
}

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	if storagePath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) GetByID(ctx context.Context, id string) (domain.Playlist, error) {
	row := a.db.QueryRowContext(ctx, "SELECT id, name FROM playlists WHERE id = ?", id)
	var playlist domain.Playlist
	if err := row.Scan(&playlist.ID, &playlist.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Playlist{}, domain.ErrNotFound
		}
		return domain.Playlist{}, fmt.Errorf("failed to load playlist: %w", err)
	}

	tracks, err := a.loadTracks(ctx, id)
	if err != nil {
		return domain.Playlist{}, err
	}
	playlist.Tracks = tracks
	return playlist, nil
}

// GetPlaylistTracks returns the playlist's tracks ordered by position.
func (a *Adapter) GetPlaylistTracks(ctx context.Context, playlistID string) ([]domain.Track, error) {
	var id string
	err := a.db.QueryRowContext(ctx, "SELECT id FROM playlists WHERE id = ?", playlistID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load playlist: %w", err)
	}
	return a.loadTracks(ctx, playlistID)
}

func (a *Adapter) loadTracks(ctx context.Context, playlistID string) ([]domain.Track, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.artist, t.album, t.duration, t.isrc, t.cover_url, t.preview_url,
			t.year, t.bpm, t.musical_key, t.mode,
			t.energy, t.danceability, t.valence, t.acousticness, t.instrumentalness
		FROM tracks t
		JOIN playlist_tracks pt ON pt.track_id = t.id
		WHERE pt.playlist_id = ?
		ORDER BY pt.position ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist tracks: %w", err)
	}
	defer rows.Close()

	tracks := []domain.Track{}
	index := map[string]int{}
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist track: %w", err)
		}
		index[track.ID] = len(tracks)
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate playlist tracks: %w", err)
	}

	genreRows, err := a.db.QueryContext(ctx, `
		SELECT tg.track_id, tg.genre
		FROM track_genres tg
		JOIN playlist_tracks pt ON pt.track_id = tg.track_id
		WHERE pt.playlist_id = ?
		ORDER BY tg.rowid ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to load track genres: %w", err)
	}
	defer genreRows.Close()

	for genreRows.Next() {
		var trackID, genre string
		if err := genreRows.Scan(&trackID, &genre); err != nil {
			return nil, fmt.Errorf("failed to scan track genre: %w", err)
		}
		if i, ok := index[trackID]; ok {
			tracks[i].Genres = append(tracks[i].Genres, genre)
		}
	}
	if err := genreRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate track genres: %w", err)
	}

	return tracks, nil
}

func scanTrack(rows *sql.Rows) (domain.Track, error) {
	var (
		track                                   domain.Track
		album, isrc, coverURL, previewURL, key  sql.NullString
		duration, bpm                           sql.NullFloat64
		energy, dance, valence, acoustic, instr sql.NullFloat64
		year, mode                              sql.NullInt64
	)
	if err := rows.Scan(
		&track.ID,
		&track.Title,
		&track.Artist,
		&album,
		&duration,
		&isrc,
		&coverURL,
		&previewURL,
		&year,
		&bpm,
		&key,
		&mode,
		&energy,
		&dance,
		&valence,
		&acoustic,
		&instr,
	); err != nil {
		return domain.Track{}, err
	}

	track.Album = album.String
	track.Duration = duration.Float64
	track.ISRC = isrc.String
	track.CoverURL = coverURL.String
	track.PreviewURL = previewURL.String
	track.Key = key.String
	track.Year = nullableInt(year)
	track.Mode = nullableInt(mode)
	track.BPM = nullableFloat(bpm)
	track.Energy = nullableFloat(energy)
	track.Danceability = nullableFloat(dance)
	track.Valence = nullableFloat(valence)
	track.Acousticness = nullableFloat(acoustic)
	track.Instrumentalness = nullableFloat(instr)
	return track, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return domain.Float(v.Float64)
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return domain.Int(int(v.Int64))
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (a *Adapter) Save(ctx context.Context, p domain.Playlist) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safety net: auto-rollback if we error/panic before commit

	queryPlaylist := `
		INSERT INTO playlists (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name;
	`
	if _, err := tx.ExecContext(ctx, queryPlaylist, p.ID, p.Name); err != nil {
		return fmt.Errorf("failed to save playlist metadata: %w", err)
	}

	// Tracks themselves are shared; only the links are rewritten.
	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_tracks WHERE playlist_id = ?", p.ID); err != nil {
		return fmt.Errorf("failed to clear old tracks: %w", err)
	}

	stmtTrack, err := tx.PrepareContext(ctx, `
		INSERT INTO tracks (
			id, title, artist, album, duration, isrc, cover_url, preview_url,
			year, bpm, musical_key, mode,
			energy, danceability, valence, acousticness, instrumentalness
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			artist=excluded.artist,
			album=excluded.album,
			duration=excluded.duration,
			isrc=excluded.isrc,
			cover_url=excluded.cover_url,
			preview_url=excluded.preview_url,
			year=excluded.year,
			bpm=excluded.bpm,
			musical_key=excluded.musical_key,
			mode=excluded.mode,
			energy=excluded.energy,
			danceability=excluded.danceability,
			valence=excluded.valence,
			acousticness=excluded.acousticness,
			instrumentalness=excluded.instrumentalness;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare track upsert: %w", err)
	}
	defer stmtTrack.Close()

	stmtLink, err := tx.PrepareContext(ctx, `
		INSERT INTO playlist_tracks (playlist_id, track_id, position)
		VALUES (?, ?, ?)
		ON CONFLICT(playlist_id, track_id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare track link: %w", err)
	}
	defer stmtLink.Close()

	for i, t := range p.Tracks {
		if _, err := stmtTrack.ExecContext(
			ctx,
			t.ID,
			t.Title,
			t.Artist,
			nullString(t.Album),
			t.Duration,
			nullString(t.ISRC),
			nullString(t.CoverURL),
			nullString(t.PreviewURL),
			t.Year,
			t.BPM,
			nullString(t.Key),
			t.Mode,
			t.Energy,
			t.Danceability,
			t.Valence,
			t.Acousticness,
			t.Instrumentalness,
		); err != nil {
			return fmt.Errorf("failed to save track %s: %w", t.ID, err)
		}
		if err := saveGenres(ctx, tx, t); err != nil {
			return err
		}
		if _, err := stmtLink.ExecContext(ctx, p.ID, t.ID, i); err != nil {
			return fmt.Errorf("failed to link track %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}

	return nil
}

func saveGenres(ctx context.Context, tx *sql.Tx, t domain.Track) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM track_genres WHERE track_id = ?", t.ID); err != nil {
		return fmt.Errorf("failed to clear genres for %s: %w", t.ID, err)
	}
	for _, g := range t.Genres {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO track_genres (track_id, genre) VALUES (?, ?) ON CONFLICT DO NOTHING",
			t.ID, g,
		); err != nil {
			return fmt.Errorf("failed to save genre %q for %s: %w", g, t.ID, err)
		}
	}
	return nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS tracks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		album TEXT,
		duration REAL,
		isrc TEXT,
		cover_url TEXT,
		preview_url TEXT,
		year INTEGER,
		bpm REAL,
		musical_key TEXT,
		mode INTEGER,
		energy REAL,
		danceability REAL,
		valence REAL,
		acousticness REAL,
		instrumentalness REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS playlists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS playlist_tracks (
		playlist_id TEXT,
		track_id TEXT,
		position INTEGER NOT NULL DEFAULT 0,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (playlist_id, track_id),
		FOREIGN KEY(playlist_id) REFERENCES playlists(id) ON DELETE CASCADE,
		FOREIGN KEY(track_id) REFERENCES tracks(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS track_genres (
		track_id TEXT NOT NULL,
		genre TEXT NOT NULL,
		PRIMARY KEY (track_id, genre),
		FOREIGN KEY(track_id) REFERENCES tracks(id) ON DELETE CASCADE
	);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	// Columns added after the first schema.
	for _, column := range []string{"year INTEGER", "musical_key TEXT", "mode INTEGER"} {
		if _, err := a.db.Exec("ALTER TABLE tracks ADD COLUMN " + column); err != nil {
			if !isDuplicateColumnError(err) {
				return err
			}
		}
	}
	if _, err := a.db.Exec("ALTER TABLE playlist_tracks ADD COLUMN position INTEGER NOT NULL DEFAULT 0"); err != nil {
		if !isDuplicateColumnError(err) {
			return err
		}
	}

	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}
