// safetraild runs the personal-safety monitoring engine with a local
// control API, a sqlite-backed store, and (by default) a simulated
// location source in place of a real device.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/safetrail/engine/internal/api"
	"github.com/safetrail/engine/internal/dispatch"
	"github.com/safetrail/engine/internal/location"
	"github.com/safetrail/engine/internal/monitor"
	"github.com/safetrail/engine/internal/storage"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(logger); err != nil {
		logger.Error("daemon failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	fences := storage.NewSQLiteGeofenceStore(db)
	history := storage.NewSQLiteHistory(db, storage.DefaultHistoryCap)

	client := dispatch.NewAPIClient(cfg.IngestionURL)
	dispatcher := dispatch.NewDispatcher(client, history, logger)
	panicTrigger := dispatch.NewPanicTrigger(dispatcher)

	detector, err := monitor.CreateDetector(cfg.Detector)
	if err != nil {
		return err
	}

	var source location.Source
	if cfg.SimulateLocation {
		simulated := location.NewSimulatedSource(cfg.StartLatitude, cfg.StartLongitude, cfg.SimulateInterval)
		defer simulated.Close()
		source = simulated
		logger.Info("using simulated location source",
			"startLatitude", cfg.StartLatitude,
			"startLongitude", cfg.StartLongitude,
			"interval", cfg.SimulateInterval)
	} else {
		return errors.New("no device location source is wired; set SAFETRAIL_SIMULATE_LOCATION=true")
	}

	supervisor := monitor.NewSupervisor(monitor.Config{
		Source:    source,
		Fences:    fences,
		History:   history,
		Sink:      dispatcher,
		Scheduler: monitor.NewTickerScheduler(logger),
		Detector:  detector,
		Logger:    logger,
	})
	defer supervisor.Stop()

	handler := api.NewHandler(supervisor, fences, panicTrigger, logger)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("control API listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("control API shutdown failed", "error", err)
	}

	supervisor.Stop()
	// Let in-flight alert deliveries complete or time out
	dispatcher.Wait()
	return nil
}
