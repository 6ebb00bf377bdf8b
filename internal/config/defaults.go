package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/ewilliams-labs/cadence/internal/adapters/spotify"
	"github.com/ewilliams-labs/cadence/internal/core/analysis"
)

// SetDefaults registers a default for every key so environment overrides
// reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	p := analysis.DefaultParams()

	v.SetDefault("log.level", "info")

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "cadence.db")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_header_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("analysis.onset_window", p.OnsetWindow)
	v.SetDefault("analysis.onset_hop", p.OnsetHop)
	v.SetDefault("analysis.chroma_frame", p.ChromaFrame)
	v.SetDefault("analysis.confidence_threshold", p.ConfidenceThreshold)
	v.SetDefault("analysis.enrich", false)
	v.SetDefault("analysis.workers", 4)
	v.SetDefault("analysis.track_timeout", 20*time.Second)

	v.SetDefault("features.provider", ProviderNone)

	v.SetDefault("spotify.base_url", spotify.DefaultBaseURL)
	v.SetDefault("spotify.token_url", spotify.DefaultTokenURL)
	v.SetDefault("spotify.client_id", "")
	v.SetDefault("spotify.client_secret", "")
	v.SetDefault("spotify.max_retries", 3)
	v.SetDefault("spotify.retry_backoff", 500*time.Millisecond)
	v.SetDefault("spotify.rate_per_second", 5.0)

	v.SetDefault("ollama.host", "http://localhost:11434")
	v.SetDefault("ollama.model", "deepseek-r1:8b")

	v.SetDefault("decoder.timeout", 15*time.Second)
}
