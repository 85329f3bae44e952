package controller

import (
	"log/slog"
	"net/http"

	"floodsentinel/internal/modules/flood/repository"
	"floodsentinel/internal/modules/flood/types"
	"floodsentinel/internal/utils"
)

// validator is satisfied by the create payloads.
type validator interface {
	Validate() error
}

// decodeBody decodes and validates a request body, writing a 422 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := utils.DecodeJSON(r, v); err != nil {
		utils.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	if val, ok := v.(validator); ok {
		if err := val.Validate(); err != nil {
			utils.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return false
		}
	}
	return true
}

func (c *floodControllerImpl) handleCreateArea(w http.ResponseWriter, r *http.Request) {
	var in types.AreaCreate
	if !decodeBody(w, r, &in) {
		return
	}
	area, err := c.repository.CreateArea(r.Context(), in)
	if err != nil {
		slog.Error("create area failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to create area: "+err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, area)
}

func (c *floodControllerImpl) handleUpdateArea(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPath(r, "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var in types.AreaUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	area, err := c.repository.UpdateArea(r.Context(), id, in)
	if repository.IsNotFound(err) {
		utils.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		slog.Error("update area failed", "area_id", id, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to update area: "+err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, area)
}

func (c *floodControllerImpl) handleListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := c.repository.ListAreas(r.Context())
	if err != nil {
		slog.Error("list areas failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to list areas: "+err.Error())
		return
	}
	if len(areas) == 0 {
		utils.WriteError(w, http.StatusNotFound, "no areas registered")
		return
	}
	utils.WriteJSON(w, http.StatusOK, areas)
}

func (c *floodControllerImpl) handleListSensors(w http.ResponseWriter, r *http.Request) {
	areaID, err := parseIDPath(r, "area_id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	sensors, err := c.repository.ListSensorsByArea(r.Context(), areaID)
	if err != nil {
		slog.Error("list sensors failed", "area_id", areaID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to list sensors: "+err.Error())
		return
	}
	if len(sensors) == 0 {
		utils.WriteError(w, http.StatusNotFound, "no sensors found for this area")
		return
	}
	utils.WriteJSON(w, http.StatusOK, sensors)
}

func (c *floodControllerImpl) handleCreateReading(w http.ResponseWriter, r *http.Request) {
	var in types.ReadingCreate
	if !decodeBody(w, r, &in) {
		return
	}
	reading, err := c.repository.CreateReading(r.Context(), in)
	if err != nil {
		slog.Error("create reading failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to create reading: "+err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, reading)
}

func (c *floodControllerImpl) handleListReadings(w http.ResponseWriter, r *http.Request) {
	sensorID, err := parseIDPath(r, "sensor_id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseLimitQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	readings, err := c.repository.ListReadingsBySensor(r.Context(), sensorID, limit)
	if err != nil {
		slog.Error("list readings failed", "sensor_id", sensorID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to list readings: "+err.Error())
		return
	}
	if len(readings) == 0 {
		utils.WriteError(w, http.StatusNotFound, "no readings found for this sensor")
		return
	}
	utils.WriteJSON(w, http.StatusOK, readings)
}

func (c *floodControllerImpl) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var in types.AlertCreate
	if !decodeBody(w, r, &in) {
		return
	}
	alert, err := c.repository.CreateAlert(r.Context(), in)
	if err != nil {
		slog.Error("create alert failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to create alert: "+err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, alert)
}

func (c *floodControllerImpl) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	limit, areaID, err := parseAlertsQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var alerts []types.Alert
	if areaID != nil {
		alerts, err = c.repository.ListAlertsByArea(r.Context(), *areaID, limit)
	} else {
		alerts, err = c.repository.ListAlerts(r.Context(), limit)
	}
	if err != nil {
		slog.Error("list alerts failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to list alerts: "+err.Error())
		return
	}
	if len(alerts) == 0 {
		utils.WriteError(w, http.StatusNotFound, "no alerts found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, alerts)
}
