package controller

import (
	"context"
	"net/http"
	"time"

	"floodsentinel/internal/modules/flood/types"
)

// APIClient is the subset of the flood API the dashboard reads and writes.
type APIClient interface {
	Areas(ctx context.Context) []types.Area
	Sensors(ctx context.Context, areaID int64) []types.Sensor
	Readings(ctx context.Context, sensorID int64, limit int) []types.Reading
	Alerts(ctx context.Context, areaID int64, limit int) []types.Alert
	CreateAlert(ctx context.Context, in types.AlertCreate) (types.Alert, error)
}

type Settings struct {
	RefreshInterval time.Duration
	ReadingsLimit   int
	AlertsLimit     int
}

type DashboardController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type dashboardControllerImpl struct {
	api      APIClient
	settings Settings
	now      func() time.Time
}

func NewDashboardController(api APIClient, settings Settings) DashboardController {
	return &dashboardControllerImpl{api: api, settings: settings, now: time.Now}
}

func (c *dashboardControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleDashboard)
	mux.HandleFunc("GET /partials/readings", c.handleReadingsPartial)
	mux.HandleFunc("GET /partials/alerts", c.handleAlertsPartial)
	mux.HandleFunc("GET /partials/map", c.handleMapPartial)
	mux.HandleFunc("POST /actions/force-alert", c.handleForceAlert)
	mux.HandleFunc("POST /actions/observation", c.handleObservation)
}
