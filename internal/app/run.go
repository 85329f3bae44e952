package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"floodsentinel/internal/config"
	"floodsentinel/internal/db"
	"floodsentinel/internal/httpapi"
	"floodsentinel/internal/migrate"
	"floodsentinel/internal/modules/flood"
	"floodsentinel/internal/modules/flood/users"
	"floodsentinel/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"dbDriver", cfg.Driver,
		"dbPath", cfg.Path,
		"dbMaxOpenConns", cfg.MaxOpenConns,
		"dbMaxIdleConns", cfg.MaxIdleConns,
		"dbConnMaxLifetime", cfg.ConnMaxLifetime,
		"dbLogSQL", cfg.LogSQL,
		"corsAllowedOrigins", cfg.CORSAllowedOrigins,
		"mqttEnabled", cfg.MQTTEnabled,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)
	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(ctx, dbConn); err != nil {
		return err
	}
	slog.Info("database ready")

	var subscriber *mqtt.Subscriber
	var floodSubscriber flood.MQTTSubscriber
	if cfg.MQTTEnabled {
		subscriber, err = mqtt.NewSubscriber(cfg, slog.Default().With("component", "mqtt"))
		if err != nil {
			return err
		}
		floodSubscriber = subscriber
	}

	mux := httpapi.NewMux(dbConn)
	// The message handler is set before Connect so messages arriving right
	// after CONNACK are not dropped.
	flood.RegisterFeature(mux, dbConn, users.NewPlaceholder(cfg.PlaceholderUserName), floodSubscriber)

	if subscriber != nil {
		// Short timeout so a missing broker does not block the API.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err = subscriber.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, mux, cfg.CORSAllowedOrigins)
	return serve(ctx, srv, func() {
		if subscriber != nil {
			slog.Info("mqtt disconnecting")
			subscriber.Disconnect()
		}
	})
}

// serve runs srv until ctx is done, then calls beforeShutdown and drains
// in-flight requests.
func serve(ctx context.Context, srv *http.Server, beforeShutdown func()) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if beforeShutdown != nil {
		beforeShutdown()
	}

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err := <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
