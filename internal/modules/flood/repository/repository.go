package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"floodsentinel/internal/modules/flood/types"
	"floodsentinel/internal/modules/flood/users"
)

//go:embed sql/insert-area.sql
var insertAreaSQL string

//go:embed sql/get-area.sql
var getAreaSQL string

//go:embed sql/list-areas.sql
var listAreasSQL string

//go:embed sql/list-sensors-by-area.sql
var listSensorsByAreaSQL string

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/list-readings-by-sensor.sql
var listReadingsBySensorSQL string

//go:embed sql/insert-alert.sql
var insertAlertSQL string

//go:embed sql/get-alert.sql
var getAlertSQL string

//go:embed sql/list-alerts.sql
var listAlertsSQL string

//go:embed sql/list-alerts-by-area.sql
var listAlertsByAreaSQL string

// TimestampLayout is the stored form of every ts column. Fixed width keeps
// text order equal to time order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

// NotFoundError reports that the targeted row does not exist.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ErrNotFound matches any *NotFoundError with errors.Is.
var ErrNotFound = errors.New("not found")

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

type FloodRepository interface {
	CreateArea(ctx context.Context, in types.AreaCreate) (types.Area, error)
	UpdateArea(ctx context.Context, id int64, in types.AreaUpdate) (types.Area, error)
	GetArea(ctx context.Context, id int64) (types.Area, error)
	ListAreas(ctx context.Context) ([]types.Area, error)
	ListSensorsByArea(ctx context.Context, areaID int64) ([]types.Sensor, error)
	CreateReading(ctx context.Context, in types.ReadingCreate) (types.Reading, error)
	ListReadingsBySensor(ctx context.Context, sensorID int64, limit int) ([]types.Reading, error)
	CreateAlert(ctx context.Context, in types.AlertCreate) (types.Alert, error)
	ListAlerts(ctx context.Context, limit int) ([]types.Alert, error)
	ListAlertsByArea(ctx context.Context, areaID int64, limit int) ([]types.Alert, error)
}

type repositoryImpl struct {
	db    *sql.DB
	users users.Directory
}

func NewRepository(db *sql.DB, dir users.Directory) FloodRepository {
	if dir == nil {
		dir = users.NewPlaceholder("")
	}
	return &repositoryImpl{db: db, users: dir}
}

// withConn runs fn on a connection held for the duration of the call and
// returns it to the pool on every path.
func (r *repositoryImpl) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Error("release connection", "error", err)
		}
	}()
	return fn(conn)
}

func (r *repositoryImpl) CreateArea(ctx context.Context, in types.AreaCreate) (types.Area, error) {
	if err := in.Validate(); err != nil {
		return types.Area{}, err
	}
	var out types.Area
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, insertAreaSQL, *in.Name, *in.Vulnerability, nullFloat(in.Lat), nullFloat(in.Lon))
		if err != nil {
			return fmt.Errorf("insert area: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert area id: %w", err)
		}
		out = types.Area{ID: id, Name: *in.Name, Vulnerability: *in.Vulnerability, Lat: in.Lat, Lon: in.Lon}
		return nil
	})
	return out, err
}

func (r *repositoryImpl) UpdateArea(ctx context.Context, id int64, in types.AreaUpdate) (types.Area, error) {
	var out types.Area
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		if !in.Empty() {
			query, args := buildAreaUpdate(id, in)
			res, err := conn.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("update area: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("update area rows: %w", err)
			}
			if n == 0 {
				return &NotFoundError{Resource: "area", ID: id}
			}
		}
		a, err := getArea(ctx, conn, id)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

// buildAreaUpdate assembles an UPDATE touching only the fields set in in.
func buildAreaUpdate(id int64, in types.AreaUpdate) (string, []any) {
	var sets []string
	var args []any
	if in.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *in.Name)
	}
	if in.Vulnerability != nil {
		sets = append(sets, "vulnerability = ?")
		args = append(args, *in.Vulnerability)
	}
	if in.Lat != nil {
		sets = append(sets, "lat = ?")
		args = append(args, *in.Lat)
	}
	if in.Lon != nil {
		sets = append(sets, "lon = ?")
		args = append(args, *in.Lon)
	}
	args = append(args, id)
	return "UPDATE areas SET " + strings.Join(sets, ", ") + " WHERE id = ?", args
}

func (r *repositoryImpl) GetArea(ctx context.Context, id int64) (types.Area, error) {
	var out types.Area
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		a, err := getArea(ctx, conn, id)
		out = a
		return err
	})
	return out, err
}

func getArea(ctx context.Context, conn *sql.Conn, id int64) (types.Area, error) {
	var a types.Area
	err := conn.QueryRowContext(ctx, getAreaSQL, id).Scan(&a.ID, &a.Name, &a.Vulnerability, &a.Lat, &a.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Area{}, &NotFoundError{Resource: "area", ID: id}
	}
	if err != nil {
		return types.Area{}, fmt.Errorf("get area %d: %w", id, err)
	}
	return a, nil
}

func (r *repositoryImpl) ListAreas(ctx context.Context) ([]types.Area, error) {
	var out []types.Area
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, listAreasSQL)
		if err != nil {
			return fmt.Errorf("list areas: %w", err)
		}
		defer closeRows(rows, "areas")
		for rows.Next() {
			var a types.Area
			if err := rows.Scan(&a.ID, &a.Name, &a.Vulnerability, &a.Lat, &a.Lon); err != nil {
				return fmt.Errorf("scan area: %w", err)
			}
			out = append(out, a)
		}
		return rows.Err()
	})
	return out, err
}

func (r *repositoryImpl) ListSensorsByArea(ctx context.Context, areaID int64) ([]types.Sensor, error) {
	var out []types.Sensor
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, listSensorsByAreaSQL, areaID)
		if err != nil {
			return fmt.Errorf("list sensors: %w", err)
		}
		defer closeRows(rows, "sensors")
		for rows.Next() {
			var s types.Sensor
			if err := rows.Scan(&s.ID, &s.Type, &s.Model, &s.AreaID); err != nil {
				return fmt.Errorf("scan sensor: %w", err)
			}
			out = append(out, s)
		}
		return rows.Err()
	})
	return out, err
}

func (r *repositoryImpl) CreateReading(ctx context.Context, in types.ReadingCreate) (types.Reading, error) {
	if err := in.Validate(); err != nil {
		return types.Reading{}, err
	}
	ts := in.Timestamp.UTC()
	var out types.Reading
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, insertReadingSQL, *in.SensorID, ts.Format(TimestampLayout), *in.Value)
		if err != nil {
			return fmt.Errorf("insert reading: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert reading id: %w", err)
		}
		out = types.Reading{ID: id, SensorID: *in.SensorID, Timestamp: ts, Value: *in.Value}
		return nil
	})
	return out, err
}

func (r *repositoryImpl) ListReadingsBySensor(ctx context.Context, sensorID int64, limit int) ([]types.Reading, error) {
	var out []types.Reading
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, listReadingsBySensorSQL, sensorID, limit)
		if err != nil {
			return fmt.Errorf("list readings: %w", err)
		}
		defer closeRows(rows, "readings")
		for rows.Next() {
			var rec types.Reading
			var ts string
			if err := rows.Scan(&rec.ID, &rec.SensorID, &ts, &rec.Value); err != nil {
				return fmt.Errorf("scan reading: %w", err)
			}
			if rec.Timestamp, err = parseTimestamp(ts); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return rows.Err()
	})
	return out, err
}

// CreateAlert inserts the alert and reads it back joined with its area. The
// insert and read-back are separate statements.
func (r *repositoryImpl) CreateAlert(ctx context.Context, in types.AlertCreate) (types.Alert, error) {
	if err := in.Validate(); err != nil {
		return types.Alert{}, err
	}
	var out types.Alert
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, insertAlertSQL,
			in.Timestamp.UTC().Format(TimestampLayout), *in.Level, *in.Origin, nullString(in.Note), *in.AreaID, *in.UserID)
		if err != nil {
			return fmt.Errorf("insert alert: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert alert id: %w", err)
		}
		rows, err := conn.QueryContext(ctx, getAlertSQL, id)
		if err != nil {
			return fmt.Errorf("read back alert %d: %w", id, err)
		}
		defer closeRows(rows, "alert")
		alerts, err := scanAlerts(rows)
		if err != nil {
			return err
		}
		if len(alerts) == 0 {
			return &NotFoundError{Resource: "alert", ID: id}
		}
		out = alerts[0]
		return nil
	})
	if err != nil {
		return types.Alert{}, err
	}
	if out.UserName, err = r.users.DisplayName(ctx, out.UserID); err != nil {
		return types.Alert{}, fmt.Errorf("resolve user %d: %w", out.UserID, err)
	}
	return out, nil
}

func (r *repositoryImpl) ListAlerts(ctx context.Context, limit int) ([]types.Alert, error) {
	return r.listAlerts(ctx, listAlertsSQL, limit)
}

func (r *repositoryImpl) ListAlertsByArea(ctx context.Context, areaID int64, limit int) ([]types.Alert, error) {
	return r.listAlerts(ctx, listAlertsByAreaSQL, areaID, limit)
}

func (r *repositoryImpl) listAlerts(ctx context.Context, query string, args ...any) ([]types.Alert, error) {
	var out []types.Alert
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("list alerts: %w", err)
		}
		defer closeRows(rows, "alerts")
		out, err = scanAlerts(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	for i := range out {
		name, err := r.users.DisplayName(ctx, out[i].UserID)
		if err != nil {
			return nil, fmt.Errorf("resolve user %d: %w", out[i].UserID, err)
		}
		out[i].UserName = name
	}
	return out, nil
}

func scanAlerts(rows *sql.Rows) ([]types.Alert, error) {
	var out []types.Alert
	for rows.Next() {
		var a types.Alert
		var ts string
		if err := rows.Scan(&a.ID, &ts, &a.Level, &a.Origin, &a.Note, &a.AreaID, &a.UserID, &a.AreaName); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		t, err := parseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		a.Timestamp = t
		out = append(out, a)
	}
	return out, rows.Err()
}

func parseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		var err2 error
		t, err2 = time.Parse(time.RFC3339, ts)
		if err2 != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: RFC3339Nano: %w; RFC3339: %w", ts, err, err2)
		}
	}
	return t.UTC(), nil
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Error("close "+what+" rows", "error", err)
	}
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
