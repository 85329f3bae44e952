package controller

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"floodsentinel/internal/dashboard/views"
	"floodsentinel/internal/modules/flood/types"
	"floodsentinel/internal/utils"
)

const (
	manualAlertNote = "Alerta manual pelo usuário"
	dashboardUserID = int64(1)

	// alertsChangedEvent makes the alert list refetch after a write.
	alertsChangedEvent = "alerts-changed"
)

// writeHTML renders into a buffer first so a template error still yields a
// clean 500.
func writeHTML(w http.ResponseWriter, what string, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		slog.Error(what+" render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error(what+": write response failed", "error", err)
	}
}

// areaParam reads area_id from the query string or form body.
func areaParam(r *http.Request) (int64, bool) {
	s := strings.TrimSpace(r.FormValue("area_id"))
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		slog.Warn("dashboard: invalid area_id", "area_id", s)
		return 0, false
	}
	return id, true
}

func (c *dashboardControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	areas := c.api.Areas(r.Context())

	selected, ok := areaParam(r)
	if !ok && len(areas) > 0 {
		selected, ok = areas[0].ID, true
	}

	opts := make([]views.AreaOption, 0, len(areas))
	for _, a := range areas {
		opts = append(opts, views.AreaOption{ID: a.ID, Name: a.Name, Selected: ok && a.ID == selected})
	}
	refresh := int(c.settings.RefreshInterval.Seconds())
	if refresh < 1 {
		refresh = 1
	}
	data := &views.DashboardData{
		Areas:          opts,
		SelectedAreaID: selected,
		HasArea:        ok,
		RefreshSeconds: refresh,
	}
	writeHTML(w, "dashboard", func(buf *bytes.Buffer) error { return views.RenderDashboard(buf, data) })
}

func (c *dashboardControllerImpl) handleReadingsPartial(w http.ResponseWriter, r *http.Request) {
	areaID, ok := areaParam(r)
	data := &views.ReadingsData{HasArea: ok, AreaID: areaID}
	if ok {
		sensors := c.api.Sensors(r.Context(), areaID)
		bySensor := make(map[int64][]types.Reading, len(sensors))
		for _, s := range sensors {
			bySensor[s.ID] = c.api.Readings(r.Context(), s.ID, c.settings.ReadingsLimit)
		}
		rows := mergeReadings(sensors, bySensor)
		data.Chart = views.BuildChart(fmt.Sprintf("Leituras Recentes - Área %d", areaID), rows)
		data.Latest = latestRows(rows, latestRowsCount)
	}
	writeHTML(w, "readings partial", func(buf *bytes.Buffer) error { return views.RenderReadingsPartial(buf, data) })
}

func (c *dashboardControllerImpl) handleAlertsPartial(w http.ResponseWriter, r *http.Request) {
	areaID, ok := areaParam(r)
	data := &views.AlertsData{HasArea: ok, AreaID: areaID}
	if ok {
		alerts := c.api.Alerts(r.Context(), areaID, c.settings.AlertsLimit)
		data.Alerts = alertItems(alerts, areaID, c.settings.AlertsLimit)
	}
	writeHTML(w, "alerts partial", func(buf *bytes.Buffer) error { return views.RenderAlertsPartial(buf, data) })
}

func (c *dashboardControllerImpl) handleMapPartial(w http.ResponseWriter, r *http.Request) {
	areas := c.api.Areas(r.Context())
	in := make([]views.MapArea, 0, len(areas))
	for _, a := range areas {
		in = append(in, views.MapArea{ID: a.ID, Name: a.Name, Vulnerability: a.Vulnerability, Lat: a.Lat, Lon: a.Lon})
	}
	m := views.BuildMap(in)
	writeHTML(w, "map partial", func(buf *bytes.Buffer) error { return views.RenderMapPartial(buf, m) })
}

func (c *dashboardControllerImpl) handleForceAlert(w http.ResponseWriter, r *http.Request) {
	areaID, ok := areaParam(r)
	if !ok {
		c.writeStatus(w, false, "Selecione uma área antes.")
		return
	}
	if err := c.postAlert(r, areaID, types.LevelCritical, manualAlertNote); err != nil {
		slog.Error("force alert failed", "area_id", areaID, "error", err)
		c.writeStatus(w, false, "Erro ao forçar alerta.")
		return
	}
	w.Header().Set("HX-Trigger", alertsChangedEvent)
	c.writeStatus(w, true, "Alerta forçado com sucesso!")
}

func (c *dashboardControllerImpl) handleObservation(w http.ResponseWriter, r *http.Request) {
	note := r.FormValue("note")
	if strings.TrimSpace(note) == "" {
		c.writeStatus(w, false, "Escreva algo antes de enviar.")
		return
	}
	areaID, ok := areaParam(r)
	if !ok {
		c.writeStatus(w, false, "Selecione uma área antes de enviar.")
		return
	}
	if err := c.postAlert(r, areaID, types.LevelManual, note); err != nil {
		slog.Error("observation failed", "area_id", areaID, "error", err)
		c.writeStatus(w, false, "Falha ao enviar observação.")
		return
	}
	w.Header().Set("HX-Trigger", alertsChangedEvent)
	c.writeStatus(w, true, "Observação enviada como alerta com sucesso.")
}

func (c *dashboardControllerImpl) postAlert(r *http.Request, areaID int64, level, note string) error {
	ts := c.now().UTC()
	origin := types.OriginDashboard
	userID := dashboardUserID
	_, err := c.api.CreateAlert(r.Context(), types.AlertCreate{
		Timestamp: &ts,
		Level:     &level,
		Origin:    &origin,
		Note:      &note,
		AreaID:    &areaID,
		UserID:    &userID,
	})
	return err
}

func (c *dashboardControllerImpl) writeStatus(w http.ResponseWriter, ok bool, msg string) {
	data := &views.StatusData{Message: msg, OK: ok}
	writeHTML(w, "status partial", func(buf *bytes.Buffer) error { return views.RenderStatusPartial(buf, data) })
}
