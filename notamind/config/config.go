package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerAddr string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string

	CompletionsEndpoint string
	CompletionsAPIKey   string
	CompletionsModel    string

	MaxNotes       int
	MaxAttachments int
}

func LoadConfig() Config {
	// a missing .env is fine, system environment only
	_ = godotenv.Load()

	cfg := Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8000"),

		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", ""),
		DBName:     getEnv("DB_NAME", ""),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),

		CompletionsEndpoint: getEnv("COMPLETIONS_ENDPOINT", "https://api.groq.com/openai/v1"),
		CompletionsAPIKey:   getEnv("COMPLETIONS_API_KEY", ""),
		CompletionsModel:    getEnv("COMPLETIONS_MODEL", "llama-3.1-8b-instant"),

		MaxNotes:       getEnvInt("MAX_NOTES", 10),
		MaxAttachments: getEnvInt("MAX_ATTACHMENTS", 3),
	}

	applyQuotasFile(&cfg, getEnv("QUOTAS_FILE", ""))
	return cfg
}

// applyQuotasFile lets deployments override the two ceilings from a
// yaml file without touching the environment.
func applyQuotasFile(cfg *Config, path string) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var quotas struct {
		MaxNotes       *int `yaml:"max_notes"`
		MaxAttachments *int `yaml:"max_attachments"`
	}
	if err := yaml.Unmarshal(data, &quotas); err != nil {
		return
	}
	if quotas.MaxNotes != nil {
		cfg.MaxNotes = *quotas.MaxNotes
	}
	if quotas.MaxAttachments != nil {
		cfg.MaxAttachments = *quotas.MaxAttachments
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
