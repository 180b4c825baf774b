// cmd/upsbridge/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/tamzrod/east-ups-bridge/internal/config"
	"github.com/tamzrod/east-ups-bridge/internal/coordinator"
	"github.com/tamzrod/east-ups-bridge/internal/logging"
	"github.com/tamzrod/east-ups-bridge/internal/profile"
	"github.com/tamzrod/east-ups-bridge/internal/publisher"
	"github.com/tamzrod/east-ups-bridge/internal/reader"
	devmodbus "github.com/tamzrod/east-ups-bridge/internal/reader/modbus"
	"github.com/tamzrod/east-ups-bridge/internal/telemetry"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "Path to configuration file")
	configCheck := flag.Bool("config-check", false, "Validate configuration and exit")
	flag.Parse()

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("configuration invalid")
	}
	config.Normalize(cfg)

	if *configCheck {
		fmt.Println("configuration OK")
		os.Exit(0)
	}

	logger, cleanup, err := logging.Setup(cfg.Bridge.Logging)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup logger")
	}
	defer cleanup()
	log.Logger = logger

	// --------------------
	// Device profile + read plan
	// --------------------

	dev := cfg.Bridge.Device

	prof, err := profile.Lookup(dev.Model)
	if err != nil {
		// Validate() already checked the model; this cannot happen.
		logger.Fatal().Err(err).Msg("device profile lookup failed")
	}
	if prof.Unverified {
		logger.Warn().Str("model", prof.Model).
			Msg("register map for this model has not been confirmed against real hardware")
	}

	plan, err := profile.BuildReadPlan(prof, profile.DefaultMaxGap)
	if err != nil {
		logger.Fatal().Err(err).Msg("read plan build failed")
	}

	// --------------------
	// Reader (serial connection factory, fail fast at startup)
	// --------------------

	factory := func() (reader.Conn, error) {
		return devmodbus.New(devmodbus.Config{
			Port:     dev.Port,
			BaudRate: dev.BaudRate,
			SlaveID:  *dev.SlaveID,
			Timeout:  time.Duration(dev.TimeoutMs) * time.Millisecond,
		})
	}

	rdr, err := reader.New(reader.Config{
		Plan:      plan,
		ReadDelay: time.Duration(*dev.ReadDelayMs) * time.Millisecond,
	}, factory, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("reader setup failed")
	}

	// --------------------
	// Telemetry
	// --------------------

	collector := telemetry.Collector(telemetry.Noop())
	if cfg.Bridge.Telemetry.Enabled {
		pc, err := telemetry.NewPrometheusCollector(nil)
		if err != nil {
			logger.Warn().Err(err).Msg("telemetry disabled")
		} else {
			collector = pc
			go serveMetrics(cfg.Bridge.Telemetry.Listen)
		}
	}

	// --------------------
	// Coordinator + MQTT exposition
	// --------------------

	coord, err := coordinator.New(coordinator.Config{
		Interval: time.Duration(dev.PollIntervalS) * time.Second,
	}, prof, rdr, logger, collector)
	if err != nil {
		logger.Fatal().Err(err).Msg("coordinator setup failed")
	}
	defer coord.Close()

	mq := cfg.Bridge.MQTT
	pub, err := publisher.New(publisher.Config{
		Broker:          mq.Broker,
		ClientID:        mq.ClientID,
		Username:        mq.Username,
		Password:        mq.Password,
		TopicPrefix:     mq.TopicPrefix,
		DiscoveryPrefix: mq.DiscoveryPrefix,
		QoS:             byte(mq.QoS),
		Retain:          *mq.Retain,
	}, prof, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("mqtt setup failed")
	}
	defer pub.Close()

	coord.OnSnapshot(pub.HandleSnapshot)
	coord.OnStale(pub.HandleStale)

	// --------------------
	// Run until signal
	// --------------------

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info().Str("model", prof.Model).Str("port", dev.Port).
		Int("interval_s", dev.PollIntervalS).Msg("bridge started")

	if err := coord.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("coordinator stopped with error")
	}
	logger.Info().Msg("shutting down")
}

func serveMetrics(listen string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(listen, mux); err != nil {
		log.Error().Err(err).Str("listen", listen).Msg("metrics listener stopped")
	}
}
