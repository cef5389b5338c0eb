package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lingoreel/lingoreel/internal/ingest"
)

// NewImportCmd imports one video synchronously, printing pipeline progress.
func NewImportCmd() *cobra.Command {
	var targetLanguage string
	var level string

	cmd := &cobra.Command{
		Use:   "import <url>",
		Short: "Import a video and its captions from YouTube",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			d, err := buildDeps(cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			trans, err := d.translator()
			if err != nil {
				return err
			}
			svc := d.ingestService(trans)

			videoID, err := svc.Import(cmd.Context(), ingest.ImportRequest{
				SourceURL:      args[0],
				TargetLanguage: targetLanguage,
				Level:          level,
			}, func(ev ingest.Event) {
				fmt.Printf("[%s] %s\n", ev.Stage, ev.Message)
			})
			if err != nil {
				return err
			}
			fmt.Printf("imported video %d\n", videoID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetLanguage, "target", "t", "", "Target language (default from config)")
	cmd.Flags().StringVar(&level, "level", "", "Difficulty level label, e.g. B1")
	return cmd
}
