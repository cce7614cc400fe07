// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/sfenizer/internal/service"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the conversion service is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
		if err != nil {
			return err
		}
		client := service.NewClient(httpClient(cfg), cfg.Service)
		status, err := client.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s: %w", client.BaseURL(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", client.BaseURL(), status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
