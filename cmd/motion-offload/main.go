package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/allanpeda/motion-scripts/internal/adapter/filesystem"
	"github.com/allanpeda/motion-scripts/internal/adapter/s3"
	"github.com/allanpeda/motion-scripts/internal/adapter/sqlite"
	"github.com/allanpeda/motion-scripts/internal/config"
	"github.com/allanpeda/motion-scripts/internal/domain"
	"github.com/allanpeda/motion-scripts/internal/logger"
	"github.com/allanpeda/motion-scripts/internal/service/offload"
)

const version = "1.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	// Initialize logger
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	log.Info("starting motion-offload",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	// Open local video directory
	local, err := filesystem.NewManager(cfg.Video.Dir)
	if err != nil {
		log.Error("failed to open video directory", zap.Error(err))
		return 1
	}

	// Build the channel table
	channels, err := domain.NewChannelMap(cfg.ChannelList())
	if err != nil {
		log.Error("invalid channel configuration", zap.Error(err))
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create remote store client
	remote, err := s3.New(ctx, s3.Config{
		Bucket:      cfg.Remote.Bucket,
		Prefix:      cfg.Remote.Prefix,
		Region:      cfg.Remote.Region,
		EndpointURL: cfg.Remote.EndpointURL,
		AccessKey:   cfg.Remote.AccessKey,
		SecretKey:   cfg.Remote.SecretKey,
	}, log)
	if err != nil {
		log.Error("failed to create remote store client", zap.Error(err))
		return 1
	}

	// Open run journal
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = filepath.Join(cfg.Video.Dir, "offload.db")
	}

	journal, err := sqlite.Open(dbPath)
	if err != nil {
		log.Error("failed to open run journal", zap.Error(err), zap.String("path", dbPath))
		return 1
	}
	defer journal.Close()

	if last, err := journal.LastRun(); err == nil && last != nil {
		log.Info("previous run",
			zap.Time("started_at", last.StartedAt),
			zap.Int("uploaded", last.Uploaded),
			zap.Int("reaped", last.Reaped),
			zap.Int("expired", last.Expired),
		)
	}

	svc := offload.New(&offload.Config{
		LockPath:     cfg.Schedule.LockPath,
		DiskCeiling:  cfg.Video.MaxDiskBytes,
		RecentWindow: cfg.GetRecentWindow(),
		SettleWindow: cfg.GetSettleWindow(),
		ExpiryAge:    cfg.GetExpiryAge(),
	}, local, filesystem.NewProcChecker(), remote, channels, journal, log)

	if interval := cfg.GetInterval(); interval > 0 {
		return runDaemon(ctx, svc, interval, log)
	}
	return runOnce(ctx, svc, log)
}

// runOnce executes a single pipeline pass for invocation under an
// external scheduler
func runOnce(ctx context.Context, svc *offload.Service, log *zap.Logger) int {
	fmt.Printf("Offload run started at %s\n", time.Now().Format(time.RFC1123))

	report, err := svc.Run(ctx)
	if errors.Is(err, offload.ErrAlreadyRunning) {
		fmt.Fprintln(os.Stderr, "Another offload run is already in progress; exiting.")
		return 2
	}
	if err != nil {
		log.Error("offload run failed", zap.Error(err))
		return 1
	}

	fmt.Println(report.Summary())
	fmt.Printf("Offload run finished at %s\n", report.FinishedAt.Format(time.RFC1123))
	return 0
}

// runDaemon repeats the pipeline on a fixed interval until interrupted
func runDaemon(ctx context.Context, svc *offload.Service, interval time.Duration, log *zap.Logger) int {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Info("running in daemon mode", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runPass := func() {
		report, err := svc.Run(ctx)
		switch {
		case errors.Is(err, offload.ErrAlreadyRunning):
			// An externally scheduled run holds the lock; skip this pass
			log.Warn("another offload run is in progress, skipping pass")
		case err != nil:
			log.Error("offload run failed", zap.Error(err))
		default:
			log.Info("pass complete", zap.String("summary", report.Summary()))
		}
	}

	runPass()
	for {
		select {
		case <-sigChan:
			log.Info("shutdown signal received, stopping")
			return 0
		case <-ticker.C:
			runPass()
		}
	}
}
