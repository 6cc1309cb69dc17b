package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	Password        string
	ServiceURL      string        // Base URL of the recognition service
	CaptureInterval time.Duration // Period between two captured frames
	RequestTimeout  time.Duration // Transport timeout for a single recognition request
	Reattendance    time.Duration // Repeated matches of a student within this window count once
	CameraDevice    int
	CameraWidth     int // Resolution hint, the device may grant something else
	CameraHeight    int
	JPEGQuality     int
	DatabasePath    string
	LogDirectory    string
	LogMaxSizeMB    int
	StaticDirectory string
}

// Load reads an optional .env file from the working directory and then builds the
// configuration from the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getEnvAsInt("PORT", 8080),
		Password:        getEnv("PASSWORD", "admin123"),
		ServiceURL:      getEnv("SERVICE_URL", "http://localhost:5000"),
		CaptureInterval: getEnvAsDuration("CAPTURE_INTERVAL", 3*time.Second),
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		Reattendance:    getEnvAsDuration("REATTENDANCE_INTERVAL", 2*time.Minute),
		CameraDevice:    getEnvAsInt("CAMERA_DEVICE", 0),
		CameraWidth:     getEnvAsInt("CAMERA_WIDTH", 1280),
		CameraHeight:    getEnvAsInt("CAMERA_HEIGHT", 720),
		JPEGQuality:     getEnvAsInt("JPEG_QUALITY", 92),
		DatabasePath:    getEnv("DB_PATH", filepath.Join(".", "data", "attendance.db")),
		LogDirectory:    getEnv("LOG_DIR", filepath.Join(".", "logs")),
		LogMaxSizeMB:    getEnvAsInt("LOG_MAX_SIZE_MB", 50),
		StaticDirectory: getEnv("STATIC_DIR", "static"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("3s", "500ms") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
