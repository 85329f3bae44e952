package app

import (
	"context"
	"log/slog"
	"net/http"

	"floodsentinel/internal/config"
	"floodsentinel/internal/dashboard/client"
	"floodsentinel/internal/dashboard/controller"
	"floodsentinel/internal/dashboard/views"
	"floodsentinel/internal/httpapi"
)

// RunDashboard serves the HTML dashboard. It talks to the API only over HTTP.
func RunDashboard(ctx context.Context, cfg config.DashboardConfig) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"apiBaseURL", cfg.APIBaseURL,
		"apiTimeout", cfg.APITimeout,
		"refreshInterval", cfg.RefreshInterval,
		"readingsLimit", cfg.ReadingsLimit,
		"alertsLimit", cfg.AlertsLimit,
	)

	if err := views.LoadTemplates(); err != nil {
		return err
	}

	api := client.New(cfg.APIBaseURL, cfg.APITimeout, slog.Default().With("component", "api-client"))

	mux := http.NewServeMux()
	controller.NewDashboardController(api, controller.Settings{
		RefreshInterval: cfg.RefreshInterval,
		ReadingsLimit:   cfg.ReadingsLimit,
		AlertsLimit:     cfg.AlertsLimit,
	}).RegisterRoutes(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpapi.NewServer(cfg.HTTPAddr, mux, nil)
	return serve(ctx, srv, nil)
}
