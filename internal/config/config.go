package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Backend  *Backendconfig
	WS       *WebSocketconfig
	Tracker  *Trackerconfig
	RabbitMq *RabbitMqconfig
	DB       *DBconfig
	Log      *Loggerconfig
}

type Backendconfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

type WebSocketconfig struct {
	URL               string
	ReconnectAttempts int
	ReconnectDelay    time.Duration
}

type Trackerconfig struct {
	Interval       time.Duration
	ReadTimeout    time.Duration
	ProviderMode   string // "http" or "simulated"
	SourceURL      string
	SimStartLat    float64
	SimStartLon    float64
	DeliveryRadius float64 // km, orders inside it are flagged on the dashboard
}

type RabbitMqconfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
}

type DBconfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type Loggerconfig struct {
	Level string
}

func New() (*Config, error) {
	getEnv := func(key, def string) string {
		val := os.Getenv(key)
		if val == "" {
			return def
		}
		return val
	}

	getEnvInt := func(key string, def int) int {
		valStr := os.Getenv(key)
		if valStr == "" {
			return def
		}
		val, err := strconv.Atoi(valStr)
		if err != nil {
			return def
		}
		return val
	}

	getEnvBool := func(key string, def bool) bool {
		valStr := os.Getenv(key)
		if valStr == "" {
			return def
		}
		val, err := strconv.ParseBool(valStr)
		if err != nil {
			return def
		}
		return val
	}

	getEnvFloat := func(key string, def float64) float64 {
		valStr := os.Getenv(key)
		if valStr == "" {
			return def
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			return def
		}
		return val
	}

	cnf := &Config{
		Backend: &Backendconfig{
			BaseURL:        getEnv("BACKEND_BASE_URL", "http://localhost:8000"),
			RequestTimeout: time.Duration(getEnvInt("BACKEND_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		WS: &WebSocketconfig{
			URL:               getEnv("WS_URL", "ws://localhost:8000/ws/agents"),
			ReconnectAttempts: getEnvInt("WS_RECONNECT_ATTEMPTS", 5),
			ReconnectDelay:    time.Duration(getEnvInt("WS_RECONNECT_DELAY_MS", 1000)) * time.Millisecond,
		},
		Tracker: &Trackerconfig{
			Interval:       time.Duration(getEnvInt("TRACKER_INTERVAL_MS", 10000)) * time.Millisecond,
			ReadTimeout:    time.Duration(getEnvInt("TRACKER_READ_TIMEOUT_MS", 10000)) * time.Millisecond,
			ProviderMode:   getEnv("TRACKER_PROVIDER", "http"),
			SourceURL:      getEnv("TRACKER_SOURCE_URL", "http://localhost:7070/position"),
			SimStartLat:    getEnvFloat("TRACKER_SIM_START_LAT", 19.0760),
			SimStartLon:    getEnvFloat("TRACKER_SIM_START_LON", 72.8777),
			DeliveryRadius: getEnvFloat("DELIVERY_RADIUS_KM", 2.0),
		},
		RabbitMq: &RabbitMqconfig{
			Enabled:  getEnvBool("RABBITMQ_ENABLED", false),
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnvInt("RABBITMQ_PORT", 5672),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
		},
		DB: &DBconfig{
			Enabled:  getEnvBool("JOURNAL_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "courier_user"),
			Password: getEnv("DB_PASSWORD", "courier_pass"),
			Database: getEnv("DB_NAME", "courier_db"),
		},
		Log: &Loggerconfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
	}

	return cnf, nil
}
