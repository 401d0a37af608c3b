package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64

	// Shift clock
	TickInterval      time.Duration
	Location          *time.Location
	LongShiftWarning  time.Duration
	LongShiftCritical time.Duration

	// Revenue
	LedgerMode   string
	DatabaseURL  string
	RedisURL     string
	WeekCacheTTL time.Duration

	// Simulation
	SimSeed    int64
	SimDrivers int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LedgerMode:     getEnv("LEDGER_MODE", "simulated"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
	}

	// Parse WebSocket timeouts
	wsReadTimeout, err := strconv.Atoi(getEnv("WS_READ_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT: %w", err)
	}
	config.WSReadTimeout = time.Duration(wsReadTimeout) * time.Second

	wsWriteTimeout, err := strconv.Atoi(getEnv("WS_WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %w", err)
	}
	config.WSWriteTimeout = time.Duration(wsWriteTimeout) * time.Second

	// Calculate WebSocket constants
	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 512

	tickMs, err := strconv.Atoi(getEnv("TICK_INTERVAL_MS", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid TICK_INTERVAL_MS: %w", err)
	}
	if tickMs <= 0 {
		return nil, fmt.Errorf("invalid TICK_INTERVAL_MS: must be positive, got %d", tickMs)
	}
	config.TickInterval = time.Duration(tickMs) * time.Millisecond

	config.Location, err = time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	warnHours, err := strconv.ParseFloat(getEnv("LONG_SHIFT_WARNING_HOURS", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LONG_SHIFT_WARNING_HOURS: %w", err)
	}
	config.LongShiftWarning = time.Duration(warnHours * float64(time.Hour))

	critHours, err := strconv.ParseFloat(getEnv("LONG_SHIFT_CRITICAL_HOURS", "12"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LONG_SHIFT_CRITICAL_HOURS: %w", err)
	}
	config.LongShiftCritical = time.Duration(critHours * float64(time.Hour))

	config.WeekCacheTTL, err = time.ParseDuration(getEnv("WEEK_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEEK_CACHE_TTL: %w", err)
	}

	config.SimSeed, err = strconv.ParseInt(getEnv("SIM_SEED", "1"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_SEED: %w", err)
	}

	config.SimDrivers, err = strconv.Atoi(getEnv("SIM_DRIVERS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_DRIVERS: %w", err)
	}

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
