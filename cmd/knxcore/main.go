// Command knxcore runs the KNX/EIB bus signal decoder, image builder,
// and status API described by the project's design documents.
//
// Usage:
//
//	knxcore serve              run the decode pipeline and status API
//	knxcore build <programID>  build a demo application program and
//	                           persist its summary for the status API
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/knxcore/knxcore/internal/api"
	"github.com/knxcore/knxcore/internal/diagnostics"
	"github.com/knxcore/knxcore/internal/eventpub"
	"github.com/knxcore/knxcore/internal/infrastructure/config"
	"github.com/knxcore/knxcore/internal/infrastructure/database"
	"github.com/knxcore/knxcore/internal/infrastructure/influxdb"
	"github.com/knxcore/knxcore/internal/infrastructure/logging"
	"github.com/knxcore/knxcore/internal/infrastructure/mqtt"
	"github.com/knxcore/knxcore/internal/knx/image"
	"github.com/knxcore/knxcore/internal/knx/signal"
	"github.com/knxcore/knxcore/internal/recorder"
	"github.com/knxcore/knxcore/internal/signal/source"

	// Registers the embedded migration files against the database
	// package via its init function.
	_ "github.com/knxcore/knxcore/migrations"
)

// Version information - set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// defaultConfigPath is used when KNXCORE_CONFIG is unset.
const defaultConfigPath = "/etc/knxcore/config.yaml"

func main() {
	fmt.Printf("knxcore %s (%s) built %s\n", version, commit, date)

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 {
		cmd = args[0]
	}

	var err error
	switch cmd {
	case "serve":
		err = run(ctx)
	case "build":
		if len(args) < 2 {
			err = fmt.Errorf("usage: knxcore build <programID>")
		} else {
			err = runBuild(ctx, args[1])
		}
	default:
		err = fmt.Errorf("unknown command %q (want \"serve\" or \"build\")", cmd)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// getConfigPath returns the configuration file path, honouring the
// KNXCORE_CONFIG override.
func getConfigPath() string {
	if v := os.Getenv("KNXCORE_CONFIG"); v != "" {
		return v
	}
	return defaultConfigPath
}

// run starts the decode pipeline and status API, and blocks until ctx
// is cancelled.
func run(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Logging, version)
	logger.Info("starting knxcore", "version", version, "decode_source", cfg.Decode.Source)

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // best-effort cleanup on shutdown

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT broker: %w", err)
	}
	defer mqttClient.Close() //nolint:errcheck // best-effort cleanup on shutdown

	publisher := eventpub.New(mqttClient, byte(cfg.MQTT.QoS), cfg.Decode.EventPublishRate)

	var diag *diagnostics.Session
	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer influxClient.Close() //nolint:errcheck // best-effort cleanup on shutdown
		diag = diagnostics.NewSession(influxClient, uuid.NewString())
	}

	rec, err := recorder.New(db.DB)
	if err != nil {
		return fmt.Errorf("creating recorder: %w", err)
	}
	defer rec.Close() //nolint:errcheck // best-effort cleanup on shutdown

	store := recorder.NewStore(db.DB)

	apiServer, err := api.New(api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  logger,
		Store:   store,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer apiServer.Close() //nolint:errcheck // best-effort cleanup on shutdown

	src, err := openSampleSource(cfg.Decode)
	if err != nil {
		return fmt.Errorf("opening sample source: %w", err)
	}

	sessionID := uuid.NewString()
	if err := rec.StartSession(ctx, sessionID, cfg.Decode.Profile, cfg.Decode.SampleRate); err != nil {
		return fmt.Errorf("starting decode session: %w", err)
	}

	opts := signal.Options{
		SampleRate: cfg.Decode.SampleRate,
		Profile:    parseProfile(cfg.Decode.Profile),
	}

	done := make(chan error, 1)
	go func() {
		spans, decodeErr := signal.Decode(src, opts)
		if decodeErr != nil {
			done <- decodeErr
			return
		}
		now := time.Now()
		for _, span := range spans {
			if err := rec.RecordSpan(ctx, sessionID, span, now); err != nil {
				logger.Error("failed to record span", "error", err)
			}
			if diag != nil {
				diag.Observe(span)
			}
			if err := publisher.Publish(span); err != nil && !errors.Is(err, eventpub.ErrRateLimited) {
				logger.Warn("failed to publish span", "error", err)
			}
			apiServer.Broadcast("decode.span", span)
		}
		done <- nil
	}()

	logger.Info("knxcore running", "address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-done:
		if err != nil {
			logger.Error("decode pipeline stopped", "error", err)
		}
	}

	if closeErr := src.Close(); closeErr != nil {
		logger.Warn("closing sample source", "error", closeErr)
	}
	<-done
	if diag != nil {
		diag.Flush()
	}

	logger.Info("knxcore stopped")
	return nil
}

// openSampleSource builds and opens the signal.SampleSource selected by
// cfg.Source.
func openSampleSource(cfg config.DecodeConfig) (closableSource, error) {
	switch cfg.Source {
	case "gpio":
		src := source.NewGPIOSource(cfg.GPIOChip, cfg.GPIOLine, cfg.SampleRate)
		if err := src.Open(); err != nil {
			return nil, err
		}
		return src, nil
	case "replay":
		return source.OpenFileReplaySource(cfg.ReplayFile)
	default:
		return nil, fmt.Errorf("unknown decode source %q", cfg.Source)
	}
}

// closableSource is the signal.SampleSource plus the lifecycle method
// every concrete source in internal/signal/source implements, letting
// run shut either one down uniformly.
type closableSource interface {
	signal.SampleSource
	Close() error
}

// parseProfile maps the configured profile name to signal.Profile,
// defaulting to ProfileDefault for an unrecognised value (config.Load
// has already validated Decode.Source but not this string).
func parseProfile(name string) signal.Profile {
	switch name {
	case "strict":
		return signal.ProfileStrict
	case "relaxed":
		return signal.ProfileRelaxed
	default:
		return signal.ProfileDefault
	}
}

// runBuild builds the demo application program and persists its
// summary under programID, for the status API's
// GET /v1/build/{programID} to serve.
func runBuild(ctx context.Context, programID string) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // best-effort cleanup on shutdown

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	device, err := demoDevice()
	if err != nil {
		return fmt.Errorf("building demo device: %w", err)
	}
	prog := demoProgram()

	img, base, err := image.Build(prog, device)
	if err != nil {
		return fmt.Errorf("building image: %w", err)
	}

	summary := image.Summarize(prog, device, img, base)

	store := recorder.NewStore(db.DB)
	if err := store.RecordBuild(ctx, programID, summary); err != nil {
		return fmt.Errorf("recording build result: %w", err)
	}

	fmt.Printf("built program %s: base=0x%04X size=%d hash=%s\n",
		programID, summary.BaseAddress, summary.ImageSize, summary.ContentHash)
	return nil
}
