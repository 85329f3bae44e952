package types

import (
	"fmt"
	"strings"
	"time"
)

// Area is a monitored location.
type Area struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Vulnerability string   `json:"vulnerability"`
	Lat           *float64 `json:"lat"`
	Lon           *float64 `json:"lon"`
}

type AreaCreate struct {
	Name          *string  `json:"name"`
	Vulnerability *string  `json:"vulnerability"`
	Lat           *float64 `json:"lat"`
	Lon           *float64 `json:"lon"`
}

// AreaUpdate is a partial update: nil fields are left unchanged.
type AreaUpdate struct {
	Name          *string  `json:"name"`
	Vulnerability *string  `json:"vulnerability"`
	Lat           *float64 `json:"lat"`
	Lon           *float64 `json:"lon"`
}

// Empty reports whether no field is set.
func (u AreaUpdate) Empty() bool {
	return u.Name == nil && u.Vulnerability == nil && u.Lat == nil && u.Lon == nil
}

type Sensor struct {
	ID     int64   `json:"id"`
	Type   string  `json:"type"`
	Model  *string `json:"model"`
	AreaID int64   `json:"area_id"`
}

type Reading struct {
	ID        int64     `json:"id"`
	SensorID  int64     `json:"sensor_id"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

type ReadingCreate struct {
	SensorID  *int64     `json:"sensor_id"`
	Timestamp *time.Time `json:"timestamp"`
	Value     *float64   `json:"value"`
}

type Alert struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Origin    string    `json:"origin"`
	Note      *string   `json:"note"`
	AreaID    int64     `json:"area_id"`
	UserID    int64     `json:"user_id"`
	AreaName  string    `json:"area_name"`
	UserName  string    `json:"user_name"`
}

type AlertCreate struct {
	Timestamp *time.Time `json:"timestamp"`
	Level     *string    `json:"level"`
	Origin    *string    `json:"origin"`
	Note      *string    `json:"note"`
	AreaID    *int64     `json:"area_id"`
	UserID    *int64     `json:"user_id"`
}

// Alert levels and origins used by the dashboard.
const (
	LevelCritical = "CRITICO"
	LevelManual   = "MANUAL"

	OriginDashboard = "Dashboard"
)

// ValidationError lists the required fields missing from a request body.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

func missing(fields ...any) error {
	var names []string
	for i := 0; i+1 < len(fields); i += 2 {
		if isNil(fields[i+1]) {
			names = append(names, fields[i].(string))
		}
	}
	if len(names) == 0 {
		return nil
	}
	return &ValidationError{Missing: names}
}

func isNil(v any) bool {
	switch p := v.(type) {
	case *string:
		return p == nil
	case *int64:
		return p == nil
	case *float64:
		return p == nil
	case *time.Time:
		return p == nil
	}
	return v == nil
}

func (c AreaCreate) Validate() error {
	return missing("name", c.Name, "vulnerability", c.Vulnerability)
}

func (c ReadingCreate) Validate() error {
	return missing("sensor_id", c.SensorID, "timestamp", c.Timestamp, "value", c.Value)
}

func (c AlertCreate) Validate() error {
	return missing("timestamp", c.Timestamp, "level", c.Level, "origin", c.Origin,
		"area_id", c.AreaID, "user_id", c.UserID)
}
