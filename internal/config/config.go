package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Database
	DBDriver    string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	SQLitePath  string
	DatabaseURL string

	// Redis
	EnableRedis bool
	RedisURL    string

	// Server
	Port        string
	Environment string

	// CORS
	CORSOrigins []string

	// Upload
	UploadDir     string
	MaxUploadSize int64

	// Rate Limiting
	RateLimitRequests int
	RateLimitWindow   int
	RateLimitBurst    int

	UploadRateLimitRequests int
	UploadRateLimitWindow   int
	RenderRateLimitRequests int
	RenderRateLimitWindow   int

	// Features
	EnableCache    bool
	EnableMetrics  bool
	RenderCacheTTL time.Duration
	TaskWorkers    int

	// AdminToken guards listing and deleting shared assets. Empty disables
	// those routes.
	AdminToken string

	// Microsites
	PublicBaseURL    string
	MicrositePath    string
	EditTokenSecret  string
	EditTokenTTL     time.Duration
	ViewerTheme      string
	MaxRenderWidth   int
	MicrositeQRWidth int
}

func New() *Config {
	c := &Config{
		// Database
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "qrstudio"),
		DBPassword: getEnv("DB_PASSWORD", "qrstudio"),
		DBName:     getEnv("DB_NAME", "qrstudio"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "./qrstudio.db"),

		// Redis
		EnableRedis: getEnvAsBool("ENABLE_REDIS", true),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),

		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// CORS
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		// Upload
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_SIZE", 10*1024*1024)),

		// Rate Limiting
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsInt("RATE_LIMIT_WINDOW", 60),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 20),

		UploadRateLimitRequests: getEnvAsInt("UPLOAD_RATE_LIMIT_REQUESTS", 10),
		UploadRateLimitWindow:   getEnvAsInt("UPLOAD_RATE_LIMIT_WINDOW", 300),
		RenderRateLimitRequests: getEnvAsInt("RENDER_RATE_LIMIT_REQUESTS", 60),
		RenderRateLimitWindow:   getEnvAsInt("RENDER_RATE_LIMIT_WINDOW", 60),

		// Features
		EnableCache:    getEnvAsBool("ENABLE_CACHE", true),
		EnableMetrics:  getEnvAsBool("ENABLE_METRICS", true),
		RenderCacheTTL: time.Duration(getEnvAsInt("RENDER_CACHE_TTL", 600)) * time.Second,
		TaskWorkers:    getEnvAsInt("TASK_WORKERS", 2),

		AdminToken: getEnv("ADMIN_TOKEN", ""),

		// Microsites
		PublicBaseURL:    strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		MicrositePath:    getEnv("MICROSITE_PATH", "/m"),
		EditTokenSecret:  getEnv("EDIT_TOKEN_SECRET", "change-this-edit-token-secret"),
		EditTokenTTL:     time.Duration(getEnvAsInt("EDIT_TOKEN_TTL_HOURS", 24*90)) * time.Hour,
		ViewerTheme:      normaliseTheme(getEnv("VIEWER_THEME", "light")),
		MaxRenderWidth:   getEnvAsInt("MAX_RENDER_WIDTH", 2048),
		MicrositeQRWidth: getEnvAsInt("MICROSITE_QR_WIDTH", 300),
	}

	if !strings.HasPrefix(c.MicrositePath, "/") {
		c.MicrositePath = "/" + c.MicrositePath
	}

	// Build DSN
	c.DatabaseURL = fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)

	return c
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "true" || valueStr == "1"
}

func normaliseTheme(theme string) string {
	if strings.EqualFold(strings.TrimSpace(theme), "dark") {
		return "dark"
	}
	return "light"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// MicrositeBaseURL is the absolute viewer URL that microsite tokens are appended to.
func (c *Config) MicrositeBaseURL() string {
	return c.PublicBaseURL + c.MicrositePath
}
