package views

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func loadOrFail(t *testing.T) {
	t.Helper()
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() = %v; want nil", err)
	}
}

func TestLoadTemplates_success(t *testing.T) {
	loadOrFail(t)
	if dashboardTmpl == nil {
		t.Fatal("LoadTemplates() left dashboardTmpl nil")
	}
}

func TestLoadTemplates_failure_sub(t *testing.T) {
	emptyFS := fstest.MapFS{}
	if err := loadTemplatesFromFS(emptyFS, "templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(emptyFS, \"templates\") = nil; want error")
	}
}

func TestLoadTemplates_failure_parse(t *testing.T) {
	badFS := fstest.MapFS{
		"templates/base.html":       {Data: []byte("{{ .")},
		"templates/partials/x.html": {Data: []byte("ok")},
	}
	if err := loadTemplatesFromFS(badFS, "templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(badFS, \"templates\") = nil; want error")
	}
}

func TestRender_notLoaded(t *testing.T) {
	prev := dashboardTmpl
	dashboardTmpl = nil
	t.Cleanup(func() { dashboardTmpl = prev })

	var buf bytes.Buffer
	err := RenderDashboard(&buf, &DashboardData{})
	if err == nil || !strings.Contains(err.Error(), "not loaded") {
		t.Fatalf("RenderDashboard() = %v; want not loaded error", err)
	}
}

func TestRenderDashboard(t *testing.T) {
	loadOrFail(t)
	var buf bytes.Buffer
	err := RenderDashboard(&buf, &DashboardData{
		Areas:          []AreaOption{{ID: 1, Name: "Riverside"}, {ID: 2, Name: "Centro", Selected: true}},
		SelectedAreaID: 2,
		HasArea:        true,
		RefreshSeconds: 30,
	})
	if err != nil {
		t.Fatalf("RenderDashboard() = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Flood Sentinel Dashboard",
		`<option value="2" selected>Centro</option>`,
		"/partials/readings?area_id=2",
		"every 30s",
		"Forçar Alerta (Manual)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestRenderDashboard_noAreas(t *testing.T) {
	loadOrFail(t)
	var buf bytes.Buffer
	if err := RenderDashboard(&buf, &DashboardData{RefreshSeconds: 30}); err != nil {
		t.Fatalf("RenderDashboard() = %v", err)
	}
	if !strings.Contains(buf.String(), "Nenhuma área cadastrada") {
		t.Error("dashboard without areas missing placeholder option")
	}
}

func TestRenderReadingsPartial(t *testing.T) {
	loadOrFail(t)
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []ReadingRow{
		{SensorName: "HC-SR04", Timestamp: ts, Value: 1.234},
		{SensorName: "HC-SR04", Timestamp: ts.Add(time.Minute), Value: 2},
	}

	tests := []struct {
		name string
		data *ReadingsData
		want []string
	}{
		{name: "no area", data: &ReadingsData{}, want: []string{"Selecione uma área"}},
		{name: "no data", data: &ReadingsData{HasArea: true, AreaID: 1}, want: []string{"Sem dados para exibir."}},
		{
			name: "chart and table",
			data: &ReadingsData{HasArea: true, AreaID: 1, Chart: BuildChart("Leituras Recentes - Área 1", rows), Latest: rows},
			want: []string{"<polyline", "Leituras Recentes - Área 1", "2025-03-01 12:00:00", "1.23", "HC-SR04"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := RenderReadingsPartial(&buf, tt.data); err != nil {
				t.Fatalf("RenderReadingsPartial() = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestRenderAlertsPartial(t *testing.T) {
	loadOrFail(t)
	ts := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	err := RenderAlertsPartial(&buf, &AlertsData{HasArea: true, Alerts: []AlertItem{
		{Timestamp: ts, AreaName: "Riverside", Level: "CRITICO", Note: "Alerta manual pelo usuário"},
	}})
	if err != nil {
		t.Fatalf("RenderAlertsPartial() = %v", err)
	}
	want := `<li data-nivel="CRITICO">[2025-03-01 12:30] Riverside – CRITICO – Alerta manual pelo usuário</li>`
	if !strings.Contains(buf.String(), want) {
		t.Errorf("output = %s; want %s", buf.String(), want)
	}

	buf.Reset()
	if err := RenderAlertsPartial(&buf, &AlertsData{HasArea: true}); err != nil {
		t.Fatalf("RenderAlertsPartial() = %v", err)
	}
	if !strings.Contains(buf.String(), "Nenhum alerta disponível para esta área.") {
		t.Errorf("empty output = %s", buf.String())
	}
}

func TestRenderMapAndStatus(t *testing.T) {
	loadOrFail(t)
	lat, lon := -23.5, -46.6

	var buf bytes.Buffer
	if err := RenderMapPartial(&buf, BuildMap([]MapArea{{Name: "Riverside", Vulnerability: "high", Lat: &lat, Lon: &lon}})); err != nil {
		t.Fatalf("RenderMapPartial() = %v", err)
	}
	if !strings.Contains(buf.String(), "<circle") || !strings.Contains(buf.String(), "Riverside") {
		t.Errorf("map output = %s", buf.String())
	}

	buf.Reset()
	if err := RenderStatusPartial(&buf, &StatusData{Message: "Escreva algo antes de enviar."}); err != nil {
		t.Fatalf("RenderStatusPartial() = %v", err)
	}
	if !strings.Contains(buf.String(), "status-error") || !strings.Contains(buf.String(), "Escreva algo antes de enviar.") {
		t.Errorf("status output = %s", buf.String())
	}
}
