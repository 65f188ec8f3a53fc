package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// config captures the daemon's external configuration. Values come from
// the environment, optionally seeded from a .env file.
type config struct {
	// ListenAddr is the local control API bind address.
	ListenAddr string

	// IngestionURL is the base URL of the remote alert ingestion service.
	IngestionURL string

	// DatabasePath is where the engine sqlite database lives.
	DatabasePath string

	// Detector selects the registered anomaly detector by name.
	Detector string

	// SimulateLocation enables the built-in random-walk location source.
	SimulateLocation bool

	// SimulateInterval is the simulated sample cadence.
	SimulateInterval time.Duration

	// StartLatitude/StartLongitude seed the simulated walk.
	StartLatitude  float64
	StartLongitude float64
}

func loadConfig() (config, error) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := config{
		ListenAddr:       envOr("SAFETRAIL_LISTEN_ADDR", "127.0.0.1:8473"),
		IngestionURL:     os.Getenv("SAFETRAIL_INGESTION_URL"),
		DatabasePath:     envOr("SAFETRAIL_DB_PATH", "safetrail.db"),
		Detector:         envOr("SAFETRAIL_DETECTOR", "simulated"),
		SimulateLocation: envOr("SAFETRAIL_SIMULATE_LOCATION", "true") == "true",
		SimulateInterval: 5 * time.Second,
		StartLatitude:    12.34,
		StartLongitude:   56.78,
	}

	if cfg.IngestionURL == "" {
		return config{}, errors.New("SAFETRAIL_INGESTION_URL is required")
	}

	if v := os.Getenv("SAFETRAIL_SIMULATE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return config{}, errors.Wrap(err, "invalid SAFETRAIL_SIMULATE_INTERVAL")
		}
		cfg.SimulateInterval = d
	}
	if v := os.Getenv("SAFETRAIL_START_LATITUDE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return config{}, errors.Wrap(err, "invalid SAFETRAIL_START_LATITUDE")
		}
		cfg.StartLatitude = f
	}
	if v := os.Getenv("SAFETRAIL_START_LONGITUDE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return config{}, errors.Wrap(err, "invalid SAFETRAIL_START_LONGITUDE")
		}
		cfg.StartLongitude = f
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
