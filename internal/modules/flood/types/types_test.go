package types

import (
	"errors"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func TestValidate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		err     error
		missing []string
	}{
		{name: "area ok", err: AreaCreate{Name: ptr("Riverside"), Vulnerability: ptr("high")}.Validate()},
		{name: "area empty", err: AreaCreate{}.Validate(), missing: []string{"name", "vulnerability"}},
		{name: "area no vulnerability", err: AreaCreate{Name: ptr("x")}.Validate(), missing: []string{"vulnerability"}},
		{name: "reading ok", err: ReadingCreate{SensorID: ptr(int64(1)), Timestamp: &now, Value: ptr(0.0)}.Validate()},
		{name: "reading no value", err: ReadingCreate{SensorID: ptr(int64(1)), Timestamp: &now}.Validate(), missing: []string{"value"}},
		{
			name: "alert ok",
			err: AlertCreate{
				Timestamp: &now, Level: ptr(LevelCritical), Origin: ptr(OriginDashboard),
				AreaID: ptr(int64(1)), UserID: ptr(int64(1)),
			}.Validate(),
		},
		{
			name:    "alert empty",
			err:     AlertCreate{Note: ptr("n")}.Validate(),
			missing: []string{"timestamp", "level", "origin", "area_id", "user_id"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.missing == nil {
				if tt.err != nil {
					t.Fatalf("Validate() = %v; want nil", tt.err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(tt.err, &ve) {
				t.Fatalf("Validate() = %v; want *ValidationError", tt.err)
			}
			if len(ve.Missing) != len(tt.missing) {
				t.Fatalf("Missing = %v; want %v", ve.Missing, tt.missing)
			}
			for i := range tt.missing {
				if ve.Missing[i] != tt.missing[i] {
					t.Errorf("Missing[%d] = %q; want %q", i, ve.Missing[i], tt.missing[i])
				}
			}
		})
	}
}

func TestAreaUpdateEmpty(t *testing.T) {
	if !(AreaUpdate{}).Empty() {
		t.Error("AreaUpdate{}.Empty() = false; want true")
	}
	if (AreaUpdate{Lat: ptr(1.0)}).Empty() {
		t.Error("AreaUpdate{Lat}.Empty() = true; want false")
	}
}
