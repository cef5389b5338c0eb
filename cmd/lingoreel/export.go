package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lingoreel/lingoreel/internal/service"
)

// NewExportCmd re-exports a video's captions as a WebVTT file.
func NewExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <video-id>",
		Short: "Write a video's captions to its WebVTT file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid video id %q", args[0])
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			d, err := buildDeps(cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			path, err := d.exporter.Export(cmd.Context(), videoID)
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

// NewMaintainCmd runs one caption maintenance sweep and exits.
func NewMaintainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "maintain",
		Short: "Re-export missing caption files and sweep orphans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			d, err := buildDeps(cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			svc := service.NewMaintenanceService(
				d.store, d.exporter, cfg.Storage.SubtitlesDir, cfg.Maintenance.CronExpr, nil)
			return svc.RunOnce(cmd.Context())
		},
	}
}
