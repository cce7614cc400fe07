// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the sfenizer CLI.
// It turns a photo of a shogi board into SFEN and CSA notation through the
// hosted conversion service, from a file, stdin, the camera or the
// clipboard, and can serve a local page-facing surface for the same flow.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/sfenizer/internal/observability"
	"github.com/pdiddy/sfenizer/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// logger is built from configuration before any subcommand runs.
var logger = zerolog.Nop()

// rootCmd is the base command for the sfenizer CLI.
var rootCmd = &cobra.Command{
	Use:   "sfenizer",
	Short: "Convert shogi board photos to SFEN and CSA",
	Long: `sfenizer sends a photo of a shogi board to the conversion service and
prints the position as SFEN and CSA, with a text diagram of the board.

Images come from a file path, stdin, the camera or the clipboard. The serve
subcommand exposes the same flow over local HTTP for a browser page.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = observability.NewLogger(logConfig(viper.GetViper()), os.Stderr)
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug().Str("file", f).Msg("using config file")
		}

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logger.Debug().Strs("keys", s.Keys()).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./sfenizer.yaml or ~/.config/sfenizer/sfenizer.yaml)")
	pf.String("env", "production", "service environment: production or development")
	pf.String("api-base", "", "conversion service root, overrides --env")
	pf.Duration("timeout", 0, "HTTP timeout for the conversion service (default: wait indefinitely)")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")

	bindFlags(viper.GetViper(), pf)
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Ignoring .env: %v\n", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sfenizer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sfenizer"))
		}
	}

	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Reading config: %v\n", err)
		}
	}
}

// bindEnv maps SFENIZER_* variables onto config keys; nested keys use
// underscores (SFENIZER_LOG_LEVEL for log.level).
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("SFENIZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
