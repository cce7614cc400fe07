// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/sfenizer/internal/secrets"
	"github.com/pdiddy/sfenizer/pkg/types"
)

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"env":        "env",
	"api-base":   "api_base",
	"timeout":    "timeout",
	"log-level":  "log.level",
	"log-format": "log.format",
	"addr":       "server.addr",
}

// bindFlags binds every flag in fs that has a config key. A flag only
// overrides the config file and environment when it is set explicitly.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			_ = v.BindPFlag(key, f)
		}
	})
}

func logConfig(v *viper.Viper) types.LogConfig {
	return types.LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
}

// loadConfig assembles and resolves the configuration. The API key comes
// from config or SFENIZER_API_KEY, falling back to the secrets directory.
func loadConfig(v *viper.Viper, s secrets.Secrets) (types.Config, error) {
	cfg := types.Config{
		Service: types.ServiceConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("timeout"),
				UserAgent: v.GetString("user_agent"),
			},
			Env:        types.Environment(v.GetString("env")),
			APIBaseURL: v.GetString("api_base"),
			APIKey:     v.GetString("api_key"),
		},
		Acquisition: types.AcquisitionConfig{MaxImageBytes: v.GetInt64("max_image_bytes")},
		Feedback:    types.FeedbackConfig{CopyReset: v.GetDuration("copy_reset")},
		Log:         logConfig(v),
		Server:      types.ServerConfig{Addr: v.GetString("server.addr")},
	}
	if cfg.Service.APIKey == "" {
		cfg.Service.APIKey = s.Get(secrets.APIKey)
	}
	if cfg.Service.UserAgent == "" {
		cfg.Service.UserAgent = "sfenizer/" + version
	}
	if err := cfg.Resolve(); err != nil {
		return types.Config{}, fmt.Errorf("configuration: %w", err)
	}
	return cfg, nil
}

// httpClient returns the client used for the conversion service.
func httpClient(cfg types.Config) *http.Client {
	return &http.Client{Timeout: cfg.Service.Timeout}
}
