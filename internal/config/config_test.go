package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"APP_ENV", "LOG_LEVEL", "HTTP_ADDR",
	"DB_DRIVER", "DB_DSN", "SQLITE_PATH", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"DB_CONN_MAX_LIFETIME", "DB_LOG_SQL",
	"CORS_ALLOWED_ORIGINS", "PLACEHOLDER_USER_NAME",
	"MQTT_ENABLED", "MQTT_BROKER", "MQTT_PORT", "MQTT_CLIENT_ID", "MQTT_TOPIC",
	"DASHBOARD_ADDR", "API_BASE_URL", "API_TIMEOUT", "DASHBOARD_REFRESH_INTERVAL",
	"DASHBOARD_READINGS_LIMIT", "DASHBOARD_ALERTS_LIMIT",
	"SIM_SENSOR_IDS", "SIM_INTERVAL", "SIM_BASE_LEVEL", "SIM_MAX_STEP", "SIM_CLIENT_ID",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, ":8000")
	}
	if got.Driver != "sqlite3" {
		t.Errorf("Driver = %q, want sqlite3", got.Driver)
	}
	if got.MaxOpenConns != 1 || got.MaxIdleConns != 1 {
		t.Errorf("pool = %d/%d, want 1/1", got.MaxOpenConns, got.MaxIdleConns)
	}
	if got.LogSQL {
		t.Error("LogSQL = true, want false")
	}
	if len(got.CORSAllowedOrigins) != 1 || got.CORSAllowedOrigins[0] != "*" {
		t.Errorf("CORSAllowedOrigins = %v, want [*]", got.CORSAllowedOrigins)
	}
	if got.PlaceholderUserName != "UsuárioFixo" {
		t.Errorf("PlaceholderUserName = %q, want UsuárioFixo", got.PlaceholderUserName)
	}
	if got.MQTTEnabled {
		t.Error("MQTTEnabled = true, want false")
	}
	if got.MQTTPort != 1883 || got.MQTTTopic != "floodsentinel/readings" {
		t.Errorf("mqtt = %d %q, want 1883 floodsentinel/readings", got.MQTTPort, got.MQTTTopic)
	}
}

func TestLoadFromEnv_AppEnv_Valid(t *testing.T) {
	tests := []struct {
		name   string
		appEnv string
		want   string
	}{
		{name: "dev", appEnv: "dev", want: "dev"},
		{name: "prod", appEnv: "prod", want: "prod"},
		{name: "dev with whitespace", appEnv: "  dev  ", want: "dev"},
		{name: "prod with whitespace", appEnv: "\nprod\t", want: "prod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", tt.appEnv)

			got, err := LoadFromEnv()
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v, want nil", err)
			}
			if got.AppEnv != tt.want {
				t.Errorf("AppEnv = %q, want %q", got.AppEnv, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "staging env", key: "APP_ENV", val: "staging"},
		{name: "uppercase env", key: "APP_ENV", val: "DEV"},
		{name: "loud log level", key: "LOG_LEVEL", val: "loud"},
		{name: "unknown driver", key: "DB_DRIVER", val: "postgres"},
		{name: "max open conns", key: "DB_MAX_OPEN_CONNS", val: "many"},
		{name: "max idle conns", key: "DB_MAX_IDLE_CONNS", val: "1.5"},
		{name: "lifetime", key: "DB_CONN_MAX_LIFETIME", val: "forever"},
		{name: "log sql", key: "DB_LOG_SQL", val: "sometimes"},
		{name: "mqtt enabled", key: "MQTT_ENABLED", val: "perhaps"},
		{name: "mqtt port text", key: "MQTT_PORT", val: "abc"},
		{name: "mqtt port range", key: "MQTT_PORT", val: "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() with %s=%q error = nil, want non-nil", tt.key, tt.val)
			}
		})
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", "  127.0.0.1:9000 ")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30s")
	t.Setenv("DB_LOG_SQL", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("PLACEHOLDER_USER_NAME", "Operador")
	t.Setenv("MQTT_ENABLED", "1")
	t.Setenv("MQTT_PORT", "1884")

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}
	if got.HTTPAddr != "127.0.0.1:9000" {
		t.Errorf("HTTPAddr = %q", got.HTTPAddr)
	}
	if got.Driver != "sqlite" || got.Path != "/tmp/x.db" {
		t.Errorf("Driver/Path = %q/%q", got.Driver, got.Path)
	}
	if got.ConnMaxLifetime != 30*time.Second {
		t.Errorf("ConnMaxLifetime = %v", got.ConnMaxLifetime)
	}
	if !got.LogSQL {
		t.Error("LogSQL = false, want true")
	}
	if len(got.CORSAllowedOrigins) != 2 || got.CORSAllowedOrigins[1] != "http://b.test" {
		t.Errorf("CORSAllowedOrigins = %v", got.CORSAllowedOrigins)
	}
	if got.PlaceholderUserName != "Operador" {
		t.Errorf("PlaceholderUserName = %q", got.PlaceholderUserName)
	}
	if !got.MQTTEnabled || got.MQTTPort != 1884 {
		t.Errorf("mqtt = %v %d", got.MQTTEnabled, got.MQTTPort)
	}
}

func TestLoadDashboardFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)

		got, err := LoadDashboardFromEnv()
		if err != nil {
			t.Fatalf("LoadDashboardFromEnv() error = %v, want nil", err)
		}
		if got.HTTPAddr != ":8050" {
			t.Errorf("HTTPAddr = %q, want :8050", got.HTTPAddr)
		}
		if got.APIBaseURL != "http://localhost:8000" {
			t.Errorf("APIBaseURL = %q", got.APIBaseURL)
		}
		if got.APITimeout != 5*time.Second || got.RefreshInterval != 30*time.Second {
			t.Errorf("timeouts = %v %v", got.APITimeout, got.RefreshInterval)
		}
		if got.ReadingsLimit != 50 || got.AlertsLimit != 10 {
			t.Errorf("limits = %d %d, want 50 10", got.ReadingsLimit, got.AlertsLimit)
		}
	})

	t.Run("trailing slash trimmed", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("API_BASE_URL", "http://api.test:8000/")

		got, err := LoadDashboardFromEnv()
		if err != nil {
			t.Fatalf("LoadDashboardFromEnv() error = %v", err)
		}
		if got.APIBaseURL != "http://api.test:8000" {
			t.Errorf("APIBaseURL = %q", got.APIBaseURL)
		}
	})

	invalid := map[string]string{
		"API_TIMEOUT":                "soon",
		"DASHBOARD_REFRESH_INTERVAL": "-1s",
		"DASHBOARD_READINGS_LIMIT":   "0",
		"DASHBOARD_ALERTS_LIMIT":     "ten",
	}
	for key, val := range invalid {
		t.Run("invalid "+key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			if _, err := LoadDashboardFromEnv(); err == nil {
				t.Fatalf("LoadDashboardFromEnv() with %s=%q error = nil, want non-nil", key, val)
			}
		})
	}
}

func TestLoadSimulatorFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)

		got, err := LoadSimulatorFromEnv()
		if err != nil {
			t.Fatalf("LoadSimulatorFromEnv() error = %v, want nil", err)
		}
		if len(got.SensorIDs) != 1 || got.SensorIDs[0] != 1 {
			t.Errorf("SensorIDs = %v, want [1]", got.SensorIDs)
		}
		if got.Interval != 10*time.Second || got.BaseLevel != 1.0 || got.MaxStep != 0.2 {
			t.Errorf("walk = %v %v %v", got.Interval, got.BaseLevel, got.MaxStep)
		}
		if got.MQTTTopic != "floodsentinel/readings" || got.MQTTClientID != "floodsentinel-simulator" {
			t.Errorf("mqtt = %q %q", got.MQTTTopic, got.MQTTClientID)
		}
	})

	t.Run("sensor list", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SIM_SENSOR_IDS", " 1, 3 ,4")

		got, err := LoadSimulatorFromEnv()
		if err != nil {
			t.Fatalf("LoadSimulatorFromEnv() error = %v", err)
		}
		if len(got.SensorIDs) != 3 || got.SensorIDs[1] != 3 || got.SensorIDs[2] != 4 {
			t.Errorf("SensorIDs = %v, want [1 3 4]", got.SensorIDs)
		}
	})

	invalid := map[string]string{
		"SIM_SENSOR_IDS": "1,x",
		"SIM_INTERVAL":   "0s",
		"SIM_BASE_LEVEL": "high",
		"SIM_MAX_STEP":   "-1",
		"MQTT_PORT":      "70000",
	}
	for key, val := range invalid {
		t.Run("invalid "+key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			if _, err := LoadSimulatorFromEnv(); err == nil {
				t.Fatalf("LoadSimulatorFromEnv() with %s=%q error = nil, want non-nil", key, val)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
			t.Fatalf("LoadDotEnv(missing) = %v, want nil", err)
		}
	})

	t.Run("loads variables without overriding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		body := "FLOODSENTINEL_TEST_A=from-file\nFLOODSENTINEL_TEST_B=from-file\n"
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write env file: %v", err)
		}
		t.Setenv("FLOODSENTINEL_TEST_B", "from-env")
		t.Setenv("FLOODSENTINEL_TEST_A", "")
		if err := os.Unsetenv("FLOODSENTINEL_TEST_A"); err != nil {
			t.Fatalf("unsetenv: %v", err)
		}

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("LoadDotEnv() = %v", err)
		}
		if got := os.Getenv("FLOODSENTINEL_TEST_A"); got != "from-file" {
			t.Errorf("A = %q, want from-file", got)
		}
		if got := os.Getenv("FLOODSENTINEL_TEST_B"); got != "from-env" {
			t.Errorf("B = %q, want from-env", got)
		}
	})
}

func TestParseLogLevel_Valid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want slog.Level
	}{
		{name: "debug", in: "debug", want: slog.LevelDebug},
		{name: "info", in: "info", want: slog.LevelInfo},
		{name: "warn", in: "warn", want: slog.LevelWarn},
		{name: "warning", in: "warning", want: slog.LevelWarn},
		{name: "error", in: "error", want: slog.LevelError},
		{name: "case insensitive", in: "DeBuG", want: slog.LevelDebug},
		{name: "trims whitespace", in: "  warn \n", want: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLogLevel(tt.in)
			if err != nil {
				t.Fatalf("parseLogLevel(%q) error = %v, want nil", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLogLevel_Invalid(t *testing.T) {
	for _, in := range []string{"", "nope", "warns", "1"} {
		got, err := parseLogLevel(in)
		if err == nil {
			t.Fatalf("parseLogLevel(%q) error = nil, want non-nil", in)
		}
		if got != slog.LevelInfo {
			t.Errorf("parseLogLevel(%q) = %v, want %v on error", in, got, slog.LevelInfo)
		}
	}
}
