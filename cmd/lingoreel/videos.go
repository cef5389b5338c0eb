package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lingoreel/lingoreel/internal/persistence"
)

// NewVideosCmd lists the video catalog as a table.
func NewVideosCmd() *cobra.Command {
	var status string
	var keyword string

	cmd := &cobra.Command{
		Use:   "videos",
		Short: "List videos in the catalog",
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

			videos, err := d.store.ListVideos(cmd.Context(), persistence.VideoFilter{
				Status:  status,
				Keyword: keyword,
			})
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(videos))
			for _, video := range videos {
				captions := ""
				if records, err := d.store.ListCaptions(cmd.Context(), video.ID); err == nil {
					captions = strconv.Itoa(len(records))
				}
				rows = append(rows, []string{
					strconv.FormatInt(video.ID, 10),
					video.Title,
					video.Slug,
					video.Status,
					video.SourceType,
					captions,
				})
			}

			fmt.Println(renderTable(
				[]string{"ID", "Title", "Slug", "Status", "Source", "Captions"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVarP(&keyword, "query", "q", "", "Filter by title keyword")
	return cmd
}
