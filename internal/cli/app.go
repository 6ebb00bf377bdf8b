package cli

import (
	"fmt"

	"github.com/RyanBlaney/sonido-sonar/logging"

	"github.com/ewilliams-labs/cadence/internal/adapters/mp3"
	"github.com/ewilliams-labs/cadence/internal/adapters/ollama"
	"github.com/ewilliams-labs/cadence/internal/adapters/spotify"
	"github.com/ewilliams-labs/cadence/internal/adapters/sqlite"
	"github.com/ewilliams-labs/cadence/internal/config"
	"github.com/ewilliams-labs/cadence/internal/core/analysis"
	"github.com/ewilliams-labs/cadence/internal/core/ports"
	"github.com/ewilliams-labs/cadence/internal/core/services"
	"github.com/ewilliams-labs/cadence/internal/worker"
)

func (a *app) openStore() (*sqlite.Adapter, error) {
	switch a.cfg.Storage.Driver {
	case "sqlite":
		store, err := sqlite.NewAdapter(a.cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", a.cfg.Storage.Driver)
	}
}

func (a *app) featureProvider() ports.FeatureProvider {
	switch a.cfg.Features.Provider {
	case config.ProviderSpotify:
		sp := a.cfg.Spotify
		return spotify.NewClient(spotify.Config{
			BaseURL:       sp.BaseURL,
			TokenURL:      sp.TokenURL,
			ClientID:      sp.ClientID,
			ClientSecret:  sp.ClientSecret,
			MaxRetries:    sp.MaxRetries,
			RetryBackoff:  sp.RetryBackoff,
			RatePerSecond: sp.RatePerSecond,
		}, a.log)
	case config.ProviderOllama:
		return ollama.NewClient(a.cfg.Ollama.Host, a.cfg.Ollama.Model, a.log)
	default:
		return ports.NoFeatures{}
	}
}

// newAnalyzer wires the service over store with the configured decoder,
// feature provider and, when enabled, the enrichment pool.
func (a *app) newAnalyzer(store ports.TrackStore, decoderOpts ...mp3.Option) *services.Analyzer {
	opts := []services.Option{
		services.WithEngine(analysis.NewEngine(a.cfg.Analysis.Params())),
		services.WithLogger(a.log),
	}
	if a.cfg.Analysis.Enrich {
		pool := worker.NewPool(a.cfg.Analysis.Workers, a.cfg.Analysis.TrackTimeout, a.log)
		opts = append(opts, services.WithEnrichment(pool))
	}

	a.log.Debug("analyzer configured", logging.Fields{
		"provider": a.cfg.Features.Provider,
		"enrich":   a.cfg.Analysis.Enrich,
	})
	return services.NewAnalyzer(mp3.NewDecoder(a.cfg.Decoder.Timeout, a.log, decoderOpts...), a.featureProvider(), store, opts...)
}
