// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the entry point for the dcrgate command-line application.
package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/dcrgate/pkg/config"
	"github.com/stacklok/dcrgate/pkg/logger"
)

// version is set at build time with -ldflags "-X .../app.version=...".
var version = "dev"

// NewRootCmd creates a new root command for the dcrgate CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "dcrgate",
		DisableAutoGenTag: true,
		Short:             "dcrgate serves OpenID Connect Dynamic Client Registration",
		Long: `dcrgate is a multi-tenant OpenID Connect Dynamic Client Registration server.

It implements client registration (RFC 7591) and client management (RFC 7592)
for every configured domain, issues and rotates client secrets, and signs the
registration access tokens that authorize management calls.`,
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			if err := cmd.Help(); err != nil {
				logger.Errorw("error displaying help", "error", err)
			}
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.Initialize()
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorw("error binding debug flag", "error", err)
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the dcrgate configuration file")
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		logger.Errorw("error binding config flag", "error", err)
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Silence printing the usage on error
	rootCmd.SilenceUsage = true

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dcrgate version: %s\n", version)
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long: `Validate the configuration file and print the effective configuration.

Environment overrides (DCRGATE_*) and defaults are applied before validation,
so the printed YAML is what "serve" would run with. Secrets are not printed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return validateConfig(viper.GetString("config"), cmd.OutOrStdout())
		},
	}
}

// validateConfig loads and validates the configuration at path and writes the
// effective configuration to out.
func validateConfig(path string, out io.Writer) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	logger.Infow("configuration is valid",
		"issuer", cfg.Issuer,
		"storage", cfg.Storage.Type,
		"domains", len(cfg.Domains),
	)
	return cfg.WriteYAML(out)
}
