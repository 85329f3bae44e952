package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floodsentinel/internal/config"
	"floodsentinel/internal/logging"
	"floodsentinel/internal/mqtt"
	"floodsentinel/internal/simulator"
)

const appName = "floodsentinel-simulator"

var version = "dev"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "env file: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadSimulatorFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(cfg.LogLevel, cfg.AppEnv, version, appName))
	slog.Info("starting",
		"app", appName,
		"version", version,
		"mqtt_broker", cfg.MQTTBroker,
		"mqtt_port", cfg.MQTTPort,
		"mqtt_topic", cfg.MQTTTopic,
		"sensor_ids", cfg.SensorIDs,
		"interval", cfg.Interval,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("shutting down")
}

func run(ctx context.Context, cfg config.SimulatorConfig) error {
	pub, err := mqtt.NewPublisher(cfg, slog.Default().With("component", "mqtt"))
	if err != nil {
		return err
	}
	defer pub.Disconnect()

	if err := pub.Connect(ctx); err != nil {
		return err
	}

	walker := simulator.NewWalker(cfg.SensorIDs, cfg.BaseLevel, cfg.MaxStep, uint64(time.Now().UnixNano()))
	return simulator.New(pub, walker, cfg.SensorIDs, cfg.Interval, slog.Default()).Run(ctx)
}
