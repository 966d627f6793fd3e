package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rickgao/nft-pricewatch/internal/aggregator"
	"github.com/rickgao/nft-pricewatch/internal/api"
	"github.com/rickgao/nft-pricewatch/internal/config"
	"github.com/rickgao/nft-pricewatch/internal/database"
	"github.com/rickgao/nft-pricewatch/internal/metrics"
	"github.com/rickgao/nft-pricewatch/internal/poller"
	"github.com/rickgao/nft-pricewatch/internal/version"
	"github.com/rickgao/nft-pricewatch/internal/writer"
)

// shutdownTimeout bounds how long Stop waits for an in-flight cycle.
const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "configs/pricewatch.yaml", "path to config file (optional)")
	once := flag.Bool("once", false, "run a single cycle and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	os.Exit(run(*configPath, *once))
}

func run(configPath string, once bool) int {
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger, err := newLogger(cfg.Logging, os.Stdout)
	if err != nil {
		slog.Error("failed to configure logging", "error", err)
		return 1
	}
	slog.SetDefault(logger)

	logger.Info("starting pricewatch",
		"version", version.Version,
		"commit", version.Commit,
		"config", configPath,
		"collection", cfg.Collection.Address,
		"interval", cfg.Poller.Interval,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	sink, closeSinks, err := buildSink(ctx, cfg, m, logger)
	if err != nil {
		logger.Error("failed to set up sinks", "error", err)
		return 1
	}
	defer closeSinks()

	client := newClient(cfg, logger)

	opts := []poller.Option{poller.WithLogger(logger)}
	if m != nil {
		opts = append(opts, poller.WithRecorder(m))
	}
	p := poller.New(poller.Config{
		Interval:    cfg.Poller.Interval,
		Commissions: commissions(cfg.Commissions),
	}, client, sink, opts...)

	if once {
		if err := p.RunOnce(ctx); err != nil {
			return 1
		}
		return 0
	}

	var srv *http.Server
	if m != nil {
		srv = metrics.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, m, metrics.HealthHandler(p, 3*cfg.Poller.Interval+cfg.Poller.Timeout))
		go func() {
			logger.Info("starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	if err := p.Start(ctx); err != nil {
		logger.Error("failed to start poller", "error", err)
		return 1
	}

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := p.Stop(shutdownCtx); err != nil {
		logger.Warn("poller stop timed out", "error", err)
	}
	if srv != nil {
		srv.Shutdown(shutdownCtx)
	}

	logger.Info("pricewatch stopped")
	return 0
}

// newLogger builds the slog handler selected by the logging section.
func newLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch cfg.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", cfg.Format)
}

func newClient(cfg *config.Config, logger *slog.Logger) *api.Client {
	return api.NewClient(
		api.Endpoints{
			Getgems:   cfg.Sources.GetgemsURL,
			Price:     cfg.Sources.PriceURL,
			Stonfi:    cfg.Sources.StonfiURL,
			Fragment:  cfg.Sources.FragmentURL,
			XRare:     cfg.Sources.XRareURL,
			MarketApp: cfg.Sources.MarketAppURL,
		},
		api.Collection{
			Address:       cfg.Collection.Address,
			TONAddress:    cfg.Collection.TONAddress,
			JettonAddress: cfg.Collection.JettonAddress,
		},
		api.WithLogger(logger),
		api.WithTimeout(cfg.Poller.Timeout),
		api.WithUserAgent(cfg.Sources.UserAgent),
		api.WithAPIUserAgent(version.UserAgent()),
	)
}

func commissions(c config.CommissionsConfig) aggregator.Commissions {
	return aggregator.Commissions{
		Getgems:   decimal.NewFromFloat(config.RateValue(c.Getgems)),
		Fragment:  decimal.NewFromFloat(config.RateValue(c.Fragment)),
		MarketApp: decimal.NewFromFloat(config.RateValue(c.MarketApp)),
	}
}

// buildSink wires the snapshot file and any enabled mirrors. The returned
// func releases mirror connections.
func buildSink(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (poller.Sink, func(), error) {
	var (
		mirrors []writer.Mirror
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Database.Enabled {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		pool, err := database.Open(ctx, cfg.Database)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		closers = append(closers, pool.Close)
		mirrors = append(mirrors, writer.Mirror{
			Name: "postgres",
			Sink: writer.NewPostgresSink(pool, cfg.Collection.Address),
		})
		logger.Info("database connected")
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			closeAll()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		closers = append(closers, func() { rdb.Close() })
		mirrors = append(mirrors, writer.Mirror{
			Name: "redis",
			Sink: writer.NewRedisSink(rdb, cfg.Redis.Key, cfg.Redis.TTL),
		})
		logger.Info("redis connected", "addr", cfg.Redis.Addr, "key", cfg.Redis.Key)
	}

	file := writer.NewFileSink(cfg.Output.Path, logger)
	if len(mirrors) == 0 {
		return file, closeAll, nil
	}

	var rec writer.MirrorRecorder
	if m != nil {
		rec = m
	}
	return writer.NewFanout(file, mirrors, rec, logger), closeAll, nil
}
