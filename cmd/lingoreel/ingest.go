package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewIngestCmd attaches local subtitle files to an existing video.
func NewIngestCmd() *cobra.Command {
	var secondaryPath string

	cmd := &cobra.Command{
		Use:   "ingest <video-id> <primary-file>",
		Short: "Attach subtitle files to a video",
		Long: `Reads subtitle files (SRT or WebVTT, auto-detected), aligns them into
bilingual captions and exports the result.`,
		Args: cobra.ExactArgs(2),
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

			primary, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			var secondary []byte
			if secondaryPath != "" {
				if secondary, err = os.ReadFile(secondaryPath); err != nil {
					return err
				}
			}

			// Manual ingestion never needs the translation provider.
			svc := d.ingestService(nil)
			count, err := svc.ManualIngest(cmd.Context(), videoID, string(primary), string(secondary))
			if err != nil {
				return err
			}
			fmt.Printf("stored %d captions for video %d\n", count, videoID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&secondaryPath, "secondary", "s", "", "Secondary-language subtitle file")
	return cmd
}
