package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPPort            string
	DefaultTimeLimitSec int
	CloseGraceDelay     time.Duration
	ShutdownTimeout     time.Duration
}

func Load() *Config {
	return &Config{
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		DefaultTimeLimitSec: getInt("DEFAULT_TIME_LIMIT", 60),
		CloseGraceDelay:     getDuration("CLOSE_GRACE_DELAY", time.Second),
		ShutdownTimeout:     getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
