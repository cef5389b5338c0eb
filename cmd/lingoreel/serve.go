package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/lingoreel/lingoreel/internal/config"
	"github.com/lingoreel/lingoreel/internal/httpapi"
	"github.com/lingoreel/lingoreel/internal/jobs"
	"github.com/lingoreel/lingoreel/internal/service"
	"github.com/lingoreel/lingoreel/pkg/log"
)

// NewServeCmd runs the HTTP API, the import worker queue and the caption
// maintenance cron in one process.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server with import workers and maintenance cron",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settingsPath := config.RuntimeSettingsFilePath()
			opts := make([]config.Option, 0, 1)
			if saved, err := config.LoadRuntimeSettingsFile(settingsPath); err == nil {
				opts = append(opts, config.WithRuntimeSettings(saved))
			}

			cfg, err := config.Load(configFlag, opts...)
			if err != nil {
				return err
			}
			log.InitLogger(log.ParseLevel(cfg.LogLevel))

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

			queue := jobs.NewQueue(cfg.Server.ImportWorkers, d.store)
			queue.Start(svc.Executor())
			defer queue.Stop()

			cronRunner := cron.New()
			maintenance := service.NewMaintenanceService(
				d.store, d.exporter, cfg.Storage.SubtitlesDir, cfg.Maintenance.CronExpr, cronRunner)
			if err := maintenance.Schedule(cmd.Context()); err != nil {
				return err
			}
			cronRunner.Start()
			defer cronRunner.Stop()

			settingsStore, err := config.NewRuntimeSettingsStore(settingsPath, cfg.RuntimeSettings())
			if err != nil {
				return err
			}

			server := httpapi.NewServer(
				d.store, svc, queue,
				httpapi.WithSubtitlesDir(cfg.Storage.SubtitlesDir),
				httpapi.WithRuntimeSettingsStore(settingsStore),
			)

			errCh := make(chan error, 1)
			go func() {
				log.Info("listening on %s", cfg.Server.HTTPAddr)
				errCh <- server.ListenAndServe(cfg.Server.HTTPAddr)
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case sig := <-stop:
				log.Info("received %v, shutting down", sig)
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
