// cmd/gateway/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/modbus-gateway/internal/config"
	"github.com/tamzrod/modbus-gateway/internal/gateway"
	"github.com/tamzrod/modbus-gateway/internal/httpapi"
	"github.com/tamzrod/modbus-gateway/internal/metrics"
	"github.com/tamzrod/modbus-gateway/internal/poller"
	"github.com/tamzrod/modbus-gateway/internal/schema"
	"github.com/tamzrod/modbus-gateway/internal/transport"
	"github.com/tamzrod/modbus-gateway/internal/writer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if len(os.Args) > 2 {
		log.Fatal("usage: gateway [config.yaml]")
	}

	var cfgPath string
	if len(os.Args) == 2 {
		cfgPath = os.Args[1]
	}

	// --------------------
	// Load + validate config
	// --------------------

	if err := config.LoadEnvFile(".env"); err != nil {
		log.Fatalf("env file load failed: %v", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	g := cfg.Gateway
	logger := newLogger(g.Log)

	// --------------------
	// Register map
	// --------------------

	regs := schema.Default()
	if g.RegistersPath != "" {
		regs, err = schema.LoadFile(g.RegistersPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", g.RegistersPath).Msg("register map load failed")
		}
	}
	logger.Info().Int("fields", regs.Len()).Msg("register map loaded")

	// --------------------
	// Transport + gateway
	// --------------------

	m := metrics.New()

	client := transport.Build(g.Source, component(logger, "transport"), transport.WithObserver(m))
	m.WatchStatus(client.Status)

	policy, err := gateway.ParseUnknownFieldPolicy(g.UnknownFields)
	if err != nil {
		logger.Fatal().Err(err).Msg("gateway config")
	}

	gw := gateway.New(regs, client,
		gateway.WithUnknownFieldPolicy(policy),
		gateway.WithLogger(component(logger, "gateway")),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Optional background poller
	// --------------------

	p, err := poller.Build(g.Poll, gw, m)
	if err != nil {
		logger.Fatal().Err(err).Msg("poller build failed")
	}

	pollDone := make(chan struct{})
	if p != nil {
		go func() {
			defer close(pollDone)
			p.Run(ctx, component(logger, "poller"))
		}()
	} else {
		close(pollDone)
	}

	// --------------------
	// HTTP
	// --------------------

	srv := &http.Server{
		Addr: g.HTTP.Listen,
		Handler: httpapi.NewRouter(httpapi.Deps{
			Gateway: gw,
			Writer:  writer.New(gw, component(logger, "writer")),
			Status:  client.Status,
			Metrics: m.Handler(),
		}, component(logger, "http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("listen", g.HTTP.Listen).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --------------------
	// Run until signal or server failure
	// --------------------

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err := <-serveErr:
		if err != nil {
			logger.Error().Err(err).Msg("http server failed")
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	<-pollDone

	// last: waits for any in-flight wire operation
	if err := client.Close(); err != nil {
		logger.Warn().Err(err).Msg("transport close")
	}
	logger.Info().Msg("gateway stopped")
}

func newLogger(lc config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var l zerolog.Logger
	if lc.Format == "console" {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		l = zerolog.New(os.Stderr)
	}
	return l.Level(level).With().Timestamp().Str("service", "modbus-gateway").Logger()
}

func component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
