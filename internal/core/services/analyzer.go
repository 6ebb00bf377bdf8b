package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-sonar/logging"

	"github.com/ewilliams-labs/cadence/internal/core/analysis"
	"github.com/ewilliams-labs/cadence/internal/core/domain"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
)

// Enricher runs a per-track job over a batch, returning the original track
// for any job that fails.
type Enricher interface {
	Enrich(ctx context.Context, tracks []domain.Track, fn func(context.Context, domain.Track) (domain.Track, error)) []domain.Track
}

// Analyzer coordinates audio decoding, coarse feature inference, local
// estimation and playlist aggregation.
type Analyzer struct {
	decoder  ports.AudioDecoder
	features ports.FeatureProvider
	store    ports.TrackStore
	engine   *analysis.Engine
	enricher Enricher
	log      logging.Logger
}

type Option func(*Analyzer)

// WithEngine replaces the default analysis engine.
func WithEngine(e *analysis.Engine) Option {
	return func(a *Analyzer) { a.engine = e }
}

// WithEnrichment makes AnalyzePlaylist fill missing bpm/key from audio before
// aggregating.
func WithEnrichment(e Enricher) Option {
	return func(a *Analyzer) { a.enricher = e }
}

func WithLogger(l logging.Logger) Option {
	return func(a *Analyzer) { a.log = l }
}

// NewAnalyzer constructs an Analyzer. A nil feature provider means no coarse
// inference.
func NewAnalyzer(decoder ports.AudioDecoder, features ports.FeatureProvider, store ports.TrackStore, opts ...Option) *Analyzer {
	if features == nil {
		features = ports.NoFeatures{}
	}
	a := &Analyzer{
		decoder:  decoder,
		features: features,
		store:    store,
		engine:   analysis.NewEngine(analysis.DefaultParams()),
		log:      logging.GetGlobalLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logging.GetGlobalLogger()
	}
	a.log = a.log.WithFields(logging.Fields{"component": "analyzer"})
	return a
}

// Report is the full result of analysing one piece of audio.
type Report struct {
	Features domain.AudioFeatures `json:"features"`
	Tempo    domain.TempoEstimate `json:"tempo"`
	Key      domain.KeyEstimate   `json:"key"`
	Duration float64              `json:"duration"`
}

// AnalyzeAudio decodes ref, asks the feature provider for coarse features and
// fuses them with the local tempo and key estimates.
func (a *Analyzer) AnalyzeAudio(ctx context.Context, ref domain.AudioRef) (domain.AudioFeatures, error) {
	r, err := a.AnalyzeAudioReport(ctx, ref)
	if err != nil {
		return domain.AudioFeatures{}, err
	}
	return r.Features, nil
}

// AnalyzeAudioReport is AnalyzeAudio that also returns the local estimates.
func (a *Analyzer) AnalyzeAudioReport(ctx context.Context, ref domain.AudioRef) (Report, error) {
	if ref.IsZero() {
		return Report{}, fmt.Errorf("service: analyze audio: empty reference: %w", domain.ErrInvalidArgument)
	}

	samples, err := a.decode(ctx, ref)
	if err != nil {
		return Report{}, fmt.Errorf("service: analyze audio: %w", err)
	}
	if len(samples.Data) == 0 {
		return Report{}, fmt.Errorf("service: analyze audio: %w", domain.ErrEmptySignal)
	}

	coarse, err := a.features.CoarseFeatures(ctx, ref)
	if err != nil {
		var ie *ports.InferenceError
		if !errors.As(err, &ie) {
			err = &ports.InferenceError{Provider: "features", TrackID: ref.TrackID, Err: err}
		}
		return Report{}, fmt.Errorf("service: analyze audio: %w", err)
	}

	fused, tempo, key := a.engine.Analyze(samples, coarse)
	a.log.Debug("analysed audio", logging.Fields{
		"track_id":         ref.TrackID,
		"bpm":              tempo.BPM,
		"tempo_confidence": tempo.Confidence,
		"key":              key.Name(),
		"key_confidence":   key.Confidence,
	})
	return Report{Features: fused, Tempo: tempo, Key: key, Duration: samples.Duration()}, nil
}

// EstimateTempo decodes ref and estimates its tempo. It never fails: decode
// problems yield domain.FallbackTempo.
func (a *Analyzer) EstimateTempo(ctx context.Context, ref domain.AudioRef) domain.TempoEstimate {
	samples, err := a.decode(ctx, ref)
	if err != nil {
		a.log.Debug("tempo fallback", logging.Fields{"track_id": ref.TrackID, "error": err.Error()})
		return domain.FallbackTempo()
	}
	return a.engine.EstimateTempo(samples)
}

// EstimateKey decodes ref and estimates its key. It never fails: decode
// problems yield domain.FallbackKey.
func (a *Analyzer) EstimateKey(ctx context.Context, ref domain.AudioRef) domain.KeyEstimate {
	samples, err := a.decode(ctx, ref)
	if err != nil {
		a.log.Debug("key fallback", logging.Fields{"track_id": ref.TrackID, "error": err.Error()})
		return domain.FallbackKey()
	}
	return a.engine.EstimateKey(samples)
}

// AnalyzePlaylist aggregates the stored tracks of a playlist. With enrichment
// enabled, tracks missing bpm or key are analysed from their preview audio
// first; a track whose analysis fails is aggregated as stored.
func (a *Analyzer) AnalyzePlaylist(ctx context.Context, playlistID string) (domain.PlaylistStats, error) {
	tracks, err := a.playlistTracks(ctx, playlistID)
	if err != nil {
		return domain.PlaylistStats{}, err
	}
	if len(tracks) == 0 {
		return domain.PlaylistStats{}, fmt.Errorf("service: analyze playlist %s: %w", playlistID, domain.ErrNoTracks)
	}
	if a.enricher != nil {
		tracks = a.enricher.Enrich(ctx, tracks, a.enrichTrack)
	}

	stats, err := domain.ComputeStats(tracks)
	if err != nil {
		return domain.PlaylistStats{}, fmt.Errorf("service: analyze playlist %s: %w", playlistID, err)
	}
	return stats, nil
}

func (a *Analyzer) enrichTrack(ctx context.Context, t domain.Track) (domain.Track, error) {
	if !t.NeedsAnalysis() {
		return t, nil
	}
	f, err := a.AnalyzeAudio(ctx, t.AudioRef())
	if err != nil {
		return t, err
	}
	return t.WithFeatures(f), nil
}

// FilterTracks validates c and returns the tracks satisfying it.
func (a *Analyzer) FilterTracks(tracks []domain.Track, c domain.FilterCriteria) ([]domain.Track, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("service: filter tracks: %w", err)
	}
	return domain.FilterTracks(tracks, c), nil
}

// FilterPlaylist loads a playlist and filters its tracks.
func (a *Analyzer) FilterPlaylist(ctx context.Context, playlistID string, c domain.FilterCriteria) ([]domain.Track, error) {
	tracks, err := a.playlistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return a.FilterTracks(tracks, c)
}

// OptimizeArtistDiversity reorders tracks towards target artist diversity.
func (a *Analyzer) OptimizeArtistDiversity(tracks []domain.Track, target float64) []domain.Track {
	return domain.OptimizeArtistDiversity(tracks, target)
}

// DiversifyPlaylist loads a playlist and reorders it towards target diversity.
func (a *Analyzer) DiversifyPlaylist(ctx context.Context, playlistID string, target float64) ([]domain.Track, error) {
	tracks, err := a.playlistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return a.OptimizeArtistDiversity(tracks, target), nil
}

func (a *Analyzer) playlistTracks(ctx context.Context, playlistID string) ([]domain.Track, error) {
	tracks, err := a.store.GetPlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load playlist %s: %w", playlistID, err)
	}
	return tracks, nil
}

func (a *Analyzer) decode(ctx context.Context, ref domain.AudioRef) (domain.Samples, error) {
	samples, err := a.decoder.Decode(ctx, ref)
	if err != nil {
		var de *ports.DecodeError
		if !errors.As(err, &de) {
			err = &ports.DecodeError{Source: ref.URL, Err: err}
		}
		return domain.Samples{}, err
	}
	return samples, nil
}
