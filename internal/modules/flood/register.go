package flood

import (
	"database/sql"
	"log/slog"
	"net/http"

	"floodsentinel/internal/modules/flood/controller"
	"floodsentinel/internal/modules/flood/repository"
	"floodsentinel/internal/modules/flood/users"
)

// RegisterFeature mounts the flood API on mux. When subscriber is non-nil,
// readings received over MQTT are stored through the same repository.
func RegisterFeature(mux *http.ServeMux, db *sql.DB, dir users.Directory, subscriber MQTTSubscriber) repository.FloodRepository {
	floodRepository := repository.NewRepository(db, dir)
	floodController := controller.NewFloodController(floodRepository)
	floodController.RegisterRoutes(mux)
	if subscriber != nil {
		registerMQTTHandler(subscriber, floodRepository, slog.Default().With("component", "mqtt"))
	}
	return floodRepository
}
