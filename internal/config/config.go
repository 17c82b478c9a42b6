package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Strapi backend
	StrapiURL     string
	StrapiToken   string // used when the incoming request carries no bearer token
	StrapiTimeout time.Duration
	JWTSecret     string // HS256 secret of the backend; empty disables auth

	// Import-run audit store (optional)
	DatabaseURL string
	BunDebug    bool

	// Import pipeline
	ImportWorkers   int
	SurveyDateOrder string // "dmy" or "mdy"
	Date1904        bool
	CatalogPageSize int

	AllowedOrigins []string
}

// Load loads environment variables and returns a Config struct
func Load() *Config {
	_ = godotenv.Load()

	allowedOrigins := strings.Split(
		getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		",",
	)
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	return &Config{
		Port:            getEnv("APP_PORT", "8780"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", ""),
		StrapiURL:       strings.TrimRight(getEnv("STRAPI_URL", "http://localhost:1337/api"), "/"),
		StrapiToken:     getEnv("STRAPI_TOKEN", ""),
		StrapiTimeout:   time.Duration(getEnvAsInt("STRAPI_TIMEOUT_SECONDS", 30)) * time.Second,
		JWTSecret:       getEnv("JWT_SECRET", ""),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		BunDebug:        getEnvAsBool("BUNDEBUG", false),
		ImportWorkers:   getEnvAsInt("IMPORT_WORKERS", 1),
		SurveyDateOrder: strings.ToLower(getEnv("SURVEY_DATE_ORDER", "dmy")),
		Date1904:        getEnvAsBool("SPREADSHEET_DATE1904", false),
		CatalogPageSize: getEnvAsInt("CATALOG_PAGE_SIZE", 1000),
		AllowedOrigins:  allowedOrigins,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("invalid bool for %s, defaulting to %v\n", key, fallback)
		return fallback
	}
	return val
}

func getEnvAsInt(key string, fallback int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("invalid positive int for %s, defaulting to %d\n", key, fallback)
		return fallback
	}
	return val
}
