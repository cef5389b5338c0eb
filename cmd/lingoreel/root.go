package main

import (
	"github.com/spf13/cobra"

	"github.com/lingoreel/lingoreel/internal/config"
	"github.com/lingoreel/lingoreel/pkg/log"
)

var configFlag string

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lingoreel",
		Short: "Bilingual caption backend for language-learning video",
		Long: `lingoreel imports videos, pulls or machine-translates their captions,
aligns them into bilingual records and serves them over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to TOML config file")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewImportCmd())
	rootCmd.AddCommand(NewIngestCmd())
	rootCmd.AddCommand(NewExportCmd())
	rootCmd.AddCommand(NewVideosCmd())
	rootCmd.AddCommand(NewMaintainCmd())

	return rootCmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	log.InitLogger(log.ParseLevel(cfg.LogLevel))
	return cfg, nil
}
