// Package cli implements the cadence command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ewilliams-labs/cadence/internal/config"
)

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	configFile string
	output     string
	cfg        *config.Config
	log        logging.Logger
}

// NewRootCmd builds the cadence command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "cadence",
		Short: "Audio feature extraction and playlist analytics",
		Long: `cadence estimates tempo and key from decoded audio, fuses them with
coarse features from an external provider, and reports statistics,
filters and artist-diversity orderings for stored playlists.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "",
		"config file (default is $HOME/.config/cadence/cadence.yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("db", "", "path to the SQLite database")
	flags.String("provider", "", "coarse feature provider (spotify, ollama, none)")
	flags.StringVarP(&a.output, "output", "o", "table", "output format (table, json, yaml)")

	root.AddCommand(
		newServeCmd(a),
		newStatsCmd(a),
		newFilterCmd(a),
		newDiversifyCmd(a),
		newAnalyzeCmd(a),
		newImportCmd(a),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// flagKeys maps persistent flags onto their config keys.
var flagKeys = map[string]string{
	"log-level": "log.level",
	"db":        "storage.path",
	"provider":  "features.provider",
}

func (a *app) initialize(cmd *cobra.Command) error {
	v, err := config.NewViper(a.configFile)
	if err != nil {
		return err
	}
	if err := bindFlags(cmd.Root().PersistentFlags(), v); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = newLogger(cfg.Log)
	logging.SetGlobalLogger(a.log)

	if v.ConfigFileUsed() != "" {
		a.log.Debug("using config file", logging.Fields{"path": v.ConfigFileUsed()})
	}
	return nil
}

// bindFlags binds each mapped flag to its viper key. Unset flags fall
// through to env, file and defaults.
func bindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	var lastErr error
	flags.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			lastErr = err
		}
	})
	return lastErr
}

func newLogger(cfg config.LogConfig) logging.Logger {
	l := logging.NewDefaultLogger()
	// Validated by config.Load.
	level, _ := config.ParseLevel(cfg.Level)
	l.SetLevel(level)
	return l
}
