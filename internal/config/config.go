package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	Driver          string
	DSN             string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// LogSQL wraps the sqlite3 driver so every statement is logged at debug level.
	LogSQL bool

	CORSAllowedOrigins  []string
	PlaceholderUserName string

	MQTTEnabled  bool
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string
}

type DashboardConfig struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	APIBaseURL      string
	APITimeout      time.Duration
	RefreshInterval time.Duration
	ReadingsLimit   int
	AlertsLimit     int
}

// SimulatorConfig drives cmd/simulator, which stands in for field gateways
// by publishing synthetic readings to the broker.
type SimulatorConfig struct {
	AppEnv   string
	LogLevel slog.Level

	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string

	SensorIDs []int64
	Interval  time.Duration
	BaseLevel float64
	MaxStep   float64
}

// LoadDotEnv preloads variables from the given .env files (default ".env").
// Missing files are ignored; variables already set in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func LoadFromEnv() (Config, error) {
	appEnv, level, err := loadCommon()
	if err != nil {
		return Config{}, err
	}

	httpAddr := envOr("HTTP_ADDR", ":8000")

	driver := envOr("DB_DRIVER", "sqlite3")
	switch driver {
	case "sqlite3", "sqlite":
	default:
		return Config{}, fmt.Errorf("invalid DB_DRIVER %q (allowed: sqlite3, sqlite)", driver)
	}
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	path := envOr("SQLITE_PATH", "../dev/sqlite/floodsentinel.db")

	maxOpenConns, err := envInt("DB_MAX_OPEN_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := envInt("DB_MAX_IDLE_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := envDuration("DB_CONN_MAX_LIFETIME", 0)
	if err != nil {
		return Config{}, err
	}
	logSQL, err := envBool("DB_LOG_SQL", false)
	if err != nil {
		return Config{}, err
	}

	origins := splitList(envOr("CORS_ALLOWED_ORIGINS", "*"))
	placeholder := envOr("PLACEHOLDER_USER_NAME", "UsuárioFixo")

	mqttEnabled, err := envBool("MQTT_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	mqttBroker := envOr("MQTT_BROKER", "localhost")
	mqttPort, err := envInt("MQTT_PORT", 1883)
	if err != nil {
		return Config{}, err
	}
	if mqttPort <= 0 || mqttPort > 65535 {
		return Config{}, fmt.Errorf("MQTT_PORT out of range: %d", mqttPort)
	}
	mqttClientID := envOr("MQTT_CLIENT_ID", "floodsentinel-server")
	mqttTopic := envOr("MQTT_TOPIC", "floodsentinel/readings")

	return Config{
		AppEnv:              appEnv,
		LogLevel:            level,
		HTTPAddr:            httpAddr,
		Driver:              driver,
		DSN:                 dsn,
		Path:                path,
		MaxOpenConns:        maxOpenConns,
		MaxIdleConns:        maxIdleConns,
		ConnMaxLifetime:     connMaxLifetime,
		LogSQL:              logSQL,
		CORSAllowedOrigins:  origins,
		PlaceholderUserName: placeholder,
		MQTTEnabled:         mqttEnabled,
		MQTTBroker:          mqttBroker,
		MQTTPort:            mqttPort,
		MQTTClientID:        mqttClientID,
		MQTTTopic:           mqttTopic,
	}, nil
}

func LoadDashboardFromEnv() (DashboardConfig, error) {
	appEnv, level, err := loadCommon()
	if err != nil {
		return DashboardConfig{}, err
	}

	httpAddr := envOr("DASHBOARD_ADDR", ":8050")
	apiBaseURL := strings.TrimRight(envOr("API_BASE_URL", "http://localhost:8000"), "/")

	apiTimeout, err := envDuration("API_TIMEOUT", 5*time.Second)
	if err != nil {
		return DashboardConfig{}, err
	}
	refresh, err := envDuration("DASHBOARD_REFRESH_INTERVAL", 30*time.Second)
	if err != nil {
		return DashboardConfig{}, err
	}
	if refresh <= 0 {
		return DashboardConfig{}, fmt.Errorf("DASHBOARD_REFRESH_INTERVAL must be positive, got %v", refresh)
	}

	readingsLimit, err := envInt("DASHBOARD_READINGS_LIMIT", 50)
	if err != nil {
		return DashboardConfig{}, err
	}
	alertsLimit, err := envInt("DASHBOARD_ALERTS_LIMIT", 10)
	if err != nil {
		return DashboardConfig{}, err
	}
	if readingsLimit <= 0 || alertsLimit <= 0 {
		return DashboardConfig{}, errors.New("DASHBOARD_READINGS_LIMIT and DASHBOARD_ALERTS_LIMIT must be > 0")
	}

	return DashboardConfig{
		AppEnv:          appEnv,
		LogLevel:        level,
		HTTPAddr:        httpAddr,
		APIBaseURL:      apiBaseURL,
		APITimeout:      apiTimeout,
		RefreshInterval: refresh,
		ReadingsLimit:   readingsLimit,
		AlertsLimit:     alertsLimit,
	}, nil
}

func LoadSimulatorFromEnv() (SimulatorConfig, error) {
	appEnv, level, err := loadCommon()
	if err != nil {
		return SimulatorConfig{}, err
	}

	broker := envOr("MQTT_BROKER", "localhost")
	port, err := envInt("MQTT_PORT", 1883)
	if err != nil {
		return SimulatorConfig{}, err
	}
	if port <= 0 || port > 65535 {
		return SimulatorConfig{}, fmt.Errorf("MQTT_PORT out of range: %d", port)
	}

	var ids []int64
	for _, s := range splitList(envOr("SIM_SENSOR_IDS", "1")) {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return SimulatorConfig{}, fmt.Errorf("invalid SIM_SENSOR_IDS entry %q (expected positive integer)", s)
		}
		ids = append(ids, id)
	}

	interval, err := envDuration("SIM_INTERVAL", 10*time.Second)
	if err != nil {
		return SimulatorConfig{}, err
	}
	if interval <= 0 {
		return SimulatorConfig{}, fmt.Errorf("SIM_INTERVAL must be positive, got %v", interval)
	}
	base, err := envFloat("SIM_BASE_LEVEL", 1.0)
	if err != nil {
		return SimulatorConfig{}, err
	}
	step, err := envFloat("SIM_MAX_STEP", 0.2)
	if err != nil {
		return SimulatorConfig{}, err
	}
	if step < 0 {
		return SimulatorConfig{}, fmt.Errorf("SIM_MAX_STEP must be >= 0, got %v", step)
	}

	return SimulatorConfig{
		AppEnv:       appEnv,
		LogLevel:     level,
		MQTTBroker:   broker,
		MQTTPort:     port,
		MQTTClientID: envOr("SIM_CLIENT_ID", "floodsentinel-simulator"),
		MQTTTopic:    envOr("MQTT_TOPIC", "floodsentinel/readings"),
		SensorIDs:    ids,
		Interval:     interval,
		BaseLevel:    base,
		MaxStep:      step,
	}, nil
}

func loadCommon() (string, slog.Level, error) {
	appEnv := envOr("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return "", slog.LevelInfo, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return "", slog.LevelInfo, err
	}
	return appEnv, level, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return f, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func envBool(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
