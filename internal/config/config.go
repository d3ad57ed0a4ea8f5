// Package config resolves runtime options from flags, YTDLQ_* environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ytdlq/internal/dirs"
	"ytdlq/internal/model"
	"ytdlq/internal/util"
)

// Viper keys.
const (
	KeyOutDir       = "out_dir"
	KeyFormat       = "format"
	KeyVerbose      = "verbose"
	KeyDLBinary     = "dl_binary"
	KeyJobs         = "jobs"
	KeyRetries      = "retries"
	KeyRetryBackoff = "retry_backoff"
	KeyCheckUpdates = "check_updates"
	KeyLogLevel     = "log_level"
)

// flagKeys maps root persistent flag names to viper keys.
var flagKeys = map[string]string{
	"out-dir":       KeyOutDir,
	"format":        KeyFormat,
	"verbose":       KeyVerbose,
	"dl-binary":     KeyDLBinary,
	"jobs":          KeyJobs,
	"retries":       KeyRetries,
	"retry-backoff": KeyRetryBackoff,
	"check-updates": KeyCheckUpdates,
	"log-level":     KeyLogLevel,
}

// SetDefaults registers the built-in defaults.
func SetDefaults() {
	viper.SetDefault(KeyFormat, string(model.FormatVideo))
	viper.SetDefault(KeyJobs, 3)
	viper.SetDefault(KeyRetries, 0)
	viper.SetDefault(KeyRetryBackoff, 2*time.Second)
	viper.SetDefault(KeyCheckUpdates, true)
}

// Init wires Viper with config paths, env, defaults, and flag bindings.
// cfgFile, when set, replaces the search path. A missing config file is not
// an error; a malformed one is.
func Init(root *cobra.Command, cfgFile string) error {
	_ = dirs.EnsureAll()
	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(util.ExpandHome(cfgFile))
	} else {
		if cfgDir, err := dirs.ConfigDir(); err == nil {
			viper.AddConfigPath(cfgDir)
		}
		viper.SetConfigName("config") // config.{yaml|yml|json|toml}
	}

	viper.SetEnvPrefix("YTDLQ")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	for flag, key := range flagKeys {
		if f := root.PersistentFlags().Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Load builds Options from the current Viper state.
func Load() (model.Options, error) {
	format, err := model.ParseFormat(viper.GetString(KeyFormat))
	if err != nil {
		return model.Options{}, err
	}

	opts := model.Options{
		OutDir:       util.ExpandHome(viper.GetString(KeyOutDir)),
		Format:       format,
		DLBinary:     strings.TrimSpace(viper.GetString(KeyDLBinary)),
		Verbose:      viper.GetBool(KeyVerbose),
		Jobs:         viper.GetInt(KeyJobs),
		Retries:      viper.GetInt(KeyRetries),
		RetryBackoff: viper.GetDuration(KeyRetryBackoff),
		CheckUpdates: viper.GetBool(KeyCheckUpdates),
		LogLevel:     strings.ToLower(strings.TrimSpace(viper.GetString(KeyLogLevel))),
	}
	if opts.OutDir == "" {
		if d, err := dirs.DefaultOutputDir(); err == nil {
			opts.OutDir = d
		}
	}
	if opts.Jobs < 0 {
		return model.Options{}, fmt.Errorf("jobs must be >= 0, got %d", opts.Jobs)
	}
	if opts.Retries < 0 {
		return model.Options{}, fmt.Errorf("retries must be >= 0, got %d", opts.Retries)
	}
	if opts.RetryBackoff < 0 {
		return model.Options{}, fmt.Errorf("retry_backoff must not be negative, got %s", opts.RetryBackoff)
	}
	if opts.LogLevel == "" {
		opts.LogLevel = "info"
		if opts.Verbose {
			opts.LogLevel = "debug"
		}
	}
	if _, err := log.ParseLevel(opts.LogLevel); err != nil {
		return model.Options{}, fmt.Errorf("log_level: %w", err)
	}
	return opts, nil
}
