package controller

import (
	"sort"
	"strconv"
	"time"

	"floodsentinel/internal/dashboard/views"
	"floodsentinel/internal/modules/flood/types"
)

const latestRowsCount = 5

// sensorDisplayName is the sensor model, or "Sensor <id>" when it has none.
func sensorDisplayName(s types.Sensor) string {
	if s.Model != nil && *s.Model != "" {
		return *s.Model
	}
	return "Sensor " + strconv.FormatInt(s.ID, 10)
}

type rowKey struct {
	name string
	ts   time.Time
}

// mergeReadings flattens per-sensor readings into one series keyed by
// (display name, timestamp rounded to the second). The first reading of a
// key wins. Rows come back in ascending time order.
func mergeReadings(sensors []types.Sensor, bySensor map[int64][]types.Reading) []views.ReadingRow {
	seen := map[rowKey]bool{}
	var rows []views.ReadingRow
	for _, s := range sensors {
		name := sensorDisplayName(s)
		for _, r := range bySensor[s.ID] {
			ts := r.Timestamp.Round(time.Second)
			k := rowKey{name: name, ts: ts.UTC()}
			if seen[k] {
				continue
			}
			seen[k] = true
			rows = append(rows, views.ReadingRow{SensorName: name, Timestamp: ts, Value: r.Value})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Timestamp.Equal(rows[j].Timestamp) {
			return rows[i].Timestamp.Before(rows[j].Timestamp)
		}
		return rows[i].SensorName < rows[j].SensorName
	})
	return rows
}

// latestRows returns up to n rows, newest first.
func latestRows(rows []views.ReadingRow, n int) []views.ReadingRow {
	out := make([]views.ReadingRow, 0, n)
	for i := len(rows) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, rows[i])
	}
	return out
}

// alertItems keeps only the alerts of areaID, newest first, at most limit.
func alertItems(alerts []types.Alert, areaID int64, limit int) []views.AlertItem {
	var kept []types.Alert
	for _, a := range alerts {
		if a.AreaID == areaID {
			kept = append(kept, a)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Timestamp.After(kept[j].Timestamp) })
	if len(kept) > limit {
		kept = kept[:limit]
	}

	items := make([]views.AlertItem, 0, len(kept))
	for _, a := range kept {
		item := views.AlertItem{Timestamp: a.Timestamp, AreaName: a.AreaName, Level: a.Level}
		if item.AreaName == "" {
			item.AreaName = "Área " + strconv.FormatInt(a.AreaID, 10)
		}
		if item.Level == "" {
			item.Level = "NívelDesconhecido"
		}
		if a.Note != nil {
			item.Note = *a.Note
		}
		items = append(items, item)
	}
	return items
}
