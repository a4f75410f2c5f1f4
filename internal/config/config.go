package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AuthConfig controls token signing and lifetimes.
type AuthConfig struct {
	SecretKey              string
	AccessTokenExpireMin   int
	RefreshTokenExpireDays int
	ResetTokenExpireMin    int
}

// UploadConfig limits what users may upload.
type UploadConfig struct {
	MaxFileSize      int64
	AllowedTypes     []string
	FreeMonthlyLimit int
}

// AIConfig selects and tunes the analysis provider.
type AIConfig struct {
	Provider          string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	DefaultModel      string
	PremiumModel      string
	GeminiAPIKey      string
	GeminiModel       string
	MaxTokens         int
	Temperature       float64
	RequestsPerMinute int
	ChunkTokens       int
	// Prompts overrides the built-in prompt templates, keyed by "<lang>.<task>".
	Prompts map[string]string
}

// WorkerConfig sizes the background processing pool.
type WorkerConfig struct {
	Count     int
	QueueSize int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables, optionally layered over a YAML file.
type AppConfig struct {
	AppName          string
	Version          string
	AppHost          string
	Port             string
	Timezone         string
	CORSOrigins      string
	RateLimitPerHour int
	// Debug enables debug-level log entries.
	Debug            bool
	Database         DatabaseConfig
	MinIO            MinIOConfig
	Auth             AuthConfig
	Upload           UploadConfig
	AI               AIConfig
	Worker           WorkerConfig
}

// fileConfig mirrors the subset of settings that may come from HANDOC_CONFIG_FILE.
type fileConfig struct {
	App struct {
		Name     string `yaml:"name"`
		Timezone string `yaml:"timezone"`
	} `yaml:"app"`
	Upload struct {
		MaxFileSize      int64    `yaml:"max_file_size"`
		AllowedTypes     []string `yaml:"allowed_types"`
		FreeMonthlyLimit int      `yaml:"free_monthly_limit"`
	} `yaml:"upload"`
	AI struct {
		Provider          string            `yaml:"provider"`
		DefaultModel      string            `yaml:"default_model"`
		PremiumModel      string            `yaml:"premium_model"`
		GeminiModel       string            `yaml:"gemini_model"`
		MaxTokens         int               `yaml:"max_tokens"`
		Temperature       float64           `yaml:"temperature"`
		RequestsPerMinute int               `yaml:"requests_per_minute"`
		ChunkTokens       int               `yaml:"chunk_tokens"`
		Prompts           map[string]string `yaml:"prompts"`
	} `yaml:"ai"`
	Worker struct {
		Count     int `yaml:"count"`
		QueueSize int `yaml:"queue_size"`
	} `yaml:"worker"`
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// If HANDOC_CONFIG_FILE points to a YAML file its values become the defaults; real
// environment variables still take precedence.
func Load() (*AppConfig, error) {
	fc, err := loadFile(os.Getenv("HANDOC_CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		AppName:          getEnv("APP_NAME", orString(fc.App.Name, "HanDoc AI")),
		Version:          getEnv("APP_VERSION", "1.0.0"),
		AppHost:          getEnv("APP_HOST", "localhost:8080"),
		Port:             getEnv("PORT", "8080"),
		Timezone:         getEnv("TZ_NAME", orString(fc.App.Timezone, "Asia/Seoul")),
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000"),
		RateLimitPerHour: getEnvInt("RATE_LIMIT_REQUESTS_PER_HOUR", 100),
		Debug:            getEnvBool("DEBUG", false),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Auth: AuthConfig{
			SecretKey:              getEnv("SECRET_KEY", ""),
			AccessTokenExpireMin:   getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24),
			RefreshTokenExpireDays: getEnvInt("REFRESH_TOKEN_EXPIRE_DAYS", 30),
			ResetTokenExpireMin:    getEnvInt("RESET_TOKEN_EXPIRE_MINUTES", 60),
		},
		Upload: UploadConfig{
			MaxFileSize:      getEnvInt64("MAX_FILE_SIZE", orInt64(fc.Upload.MaxFileSize, 10*1024*1024)),
			AllowedTypes:     getEnvList("ALLOWED_FILE_TYPES", orList(fc.Upload.AllowedTypes, []string{"application/pdf"})),
			FreeMonthlyLimit: getEnvInt("FREE_MONTHLY_UPLOADS", orInt(fc.Upload.FreeMonthlyLimit, 50)),
		},
		AI: AIConfig{
			Provider:          getEnv("AI_PROVIDER", orString(fc.AI.Provider, "openai")),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
			DefaultModel:      getEnv("OPENAI_MODEL_DEFAULT", orString(fc.AI.DefaultModel, "gpt-3.5-turbo")),
			PremiumModel:      getEnv("OPENAI_MODEL_PREMIUM", orString(fc.AI.PremiumModel, "gpt-4")),
			GeminiAPIKey:      getEnv("GOOGLE_API_KEY", ""),
			GeminiModel:       getEnv("GEMINI_MODEL", orString(fc.AI.GeminiModel, "gemini-2.5-flash")),
			MaxTokens:         getEnvInt("OPENAI_MAX_TOKENS", orInt(fc.AI.MaxTokens, 4000)),
			Temperature:       getEnvFloat("OPENAI_TEMPERATURE", orFloat(fc.AI.Temperature, 0.7)),
			RequestsPerMinute: getEnvInt("AI_REQUESTS_PER_MINUTE", orInt(fc.AI.RequestsPerMinute, 60)),
			ChunkTokens:       getEnvInt("AI_CHUNK_TOKENS", orInt(fc.AI.ChunkTokens, 3000)),
			Prompts:           fc.AI.Prompts,
		},
		Worker: WorkerConfig{
			Count:     getEnvInt("WORKER_COUNT", orInt(fc.Worker.Count, 2)),
			QueueSize: getEnvInt("WORKER_QUEUE_SIZE", orInt(fc.Worker.QueueSize, 100)),
		},
	}, nil
}

func loadFile(path string) (*fileConfig, error) {
	fc := &fileConfig{}
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return fc, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

// getEnvList splits a comma separated value, dropping empty entries.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func orString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

func orInt64(v, def int64) int64 {
	if v != 0 {
		return v
	}
	return def
}

func orFloat(v, def float64) float64 {
	if v != 0 {
		return v
	}
	return def
}

func orList(v, def []string) []string {
	if len(v) > 0 {
		return v
	}
	return def
}
