package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string

	UseMongo      bool
	MongoURL      string
	MongoDatabase string
	DataDir       string

	RetentionWindow time.Duration

	WSMaxClients       int64
	WSMaxPerIP         int
	WSConnectsPerSec   float64
	WSConnectBurst     int

	TTSCommand string
	AudioDir   string
}

func Load() (*Config, error) {
	retentionHours, err := getEnvInt("RETENTION_HOURS", 24)
	if err != nil {
		return nil, err
	}
	if retentionHours <= 0 {
		return nil, fmt.Errorf("RETENTION_HOURS must be positive, got %d", retentionHours)
	}

	maxClients, err := getEnvInt("WS_MAX_CLIENTS", 100)
	if err != nil {
		return nil, err
	}
	maxPerIP, err := getEnvInt("WS_MAX_PER_IP", 10)
	if err != nil {
		return nil, err
	}
	connectsPerSec, err := getEnvFloat("WS_CONNECTS_PER_SECOND", 5)
	if err != nil {
		return nil, err
	}
	connectBurst, err := getEnvInt("WS_CONNECT_BURST", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		UseMongo:         getEnvBool("USE_MONGO", false),
		MongoURL:         getEnv("MONGO_URL", ""),
		MongoDatabase:    getEnv("MONGO_DATABASE", "orderqueue"),
		DataDir:          getEnv("DATA_DIR", "data"),
		RetentionWindow:  time.Duration(retentionHours) * time.Hour,
		WSMaxClients:     int64(maxClients),
		WSMaxPerIP:       maxPerIP,
		WSConnectsPerSec: connectsPerSec,
		WSConnectBurst:   connectBurst,
		TTSCommand:       getEnv("TTS_COMMAND", "espeak"),
		AudioDir:         getEnv("AUDIO_DIR", "public/audio"),
	}

	if cfg.UseMongo && cfg.MongoURL == "" {
		return nil, fmt.Errorf("MONGO_URL is required when USE_MONGO is set")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return parsed, nil
}
