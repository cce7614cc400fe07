// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/sfenizer/internal/clipboard"
	"github.com/pdiddy/sfenizer/internal/notify"
	"github.com/pdiddy/sfenizer/internal/server"
	"github.com/pdiddy/sfenizer/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion flow over local HTTP",
	Long: `Serve starts a local HTTP surface for a browser page or script. Images are
selected by upload (file picker or camera), drop, or paste; conversions run
in the background and the page follows GET /state or GET /events.

Copy requests write to this machine's clipboard when a clipboard tool is
available.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		deps := session.Deps{
			HTTPClient: httpClient(cfg),
			Notifier:   notify.Log{Logger: logger.With().Str("component", "notify").Logger()},
			Logger:     logger,
		}
		if clip, err := clipboard.Detect(); err != nil {
			logger.Warn().Err(err).Msg("copy requests will fail")
		} else {
			logger.Info().Str("tool", clip.Name()).Msg("clipboard available")
			deps.Clipboard = clip
		}
		sess := session.New(cfg, deps)

		srv := server.New(sess, logger.With().Str("component", "server").Logger(),
			server.WithBaseContext(ctx),
			server.WithMaxImageBytes(cfg.Acquisition.MaxImageBytes),
		)
		logger.Info().Str("service", cfg.Service.APIBaseURL).Msg("converting through")
		return server.Run(ctx, cfg.Server.Addr, srv.Handler(), logger)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8787)")
	bindFlags(viper.GetViper(), serveCmd.Flags())

	rootCmd.AddCommand(serveCmd)
}
