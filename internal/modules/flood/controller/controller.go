package controller

import (
	"net/http"

	"floodsentinel/internal/modules/flood/repository"
)

type FloodController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type floodControllerImpl struct {
	repository repository.FloodRepository
}

func NewFloodController(repo repository.FloodRepository) FloodController {
	return &floodControllerImpl{repository: repo}
}

func (c *floodControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /areas", c.handleCreateArea)
	mux.HandleFunc("PUT /areas/{id}", c.handleUpdateArea)
	mux.HandleFunc("GET /areas", c.handleListAreas)
	mux.HandleFunc("GET /sensors/{area_id}", c.handleListSensors)
	mux.HandleFunc("POST /readings", c.handleCreateReading)
	mux.HandleFunc("GET /readings/{sensor_id}", c.handleListReadings)
	mux.HandleFunc("POST /alerts", c.handleCreateAlert)
	mux.HandleFunc("GET /alerts", c.handleListAlerts)
}
