// File: /config/config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	JWTSecret   string

	// Upload pipeline
	UploadDir        string
	MaxUploadBytes   int64
	MaxImageWidth    int
	JPEGQuality      int
	SweepIntervalMin int
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	maxUpload, _ := strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", "5242880"), 10, 64)
	maxWidth, _ := strconv.Atoi(getEnv("MAX_IMAGE_WIDTH", "1200"))
	quality, _ := strconv.Atoi(getEnv("JPEG_QUALITY", "80"))
	sweep, _ := strconv.Atoi(getEnv("ASSET_SWEEP_INTERVAL_MIN", "60"))

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("APP_ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", "user:password@tcp(localhost:3306)/bioloop?charset=utf8mb4&parseTime=True&loc=Local"),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key"),

		UploadDir:        getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes:   maxUpload,
		MaxImageWidth:    maxWidth,
		JPEGQuality:      quality,
		SweepIntervalMin: sweep,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
