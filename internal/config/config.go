package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App AppConfig
	Ai  AIConfig
	Ask AskConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type AIConfig struct {
	LLMProvider        string // "ollama" or "huggingface"
	OllamaBaseURL      string
	HuggingFaceKey     string
	RewriteModel       string // small model for the fan-out calls
	MergeModel         string // large model for the streaming merge
	AnswerModel        string // reasoning model for the final answer
}

type AskConfig struct {
	RewriteCount        int
	FanoutPolicy        string // "fail_fast" or "degrade"
	MergeChunkMode      string // "double" or "add"
	MergeChunkBase      int
	MergeChunkIncrement int
	AnswerChunkMode     string // "none" flushes every delta
	CallTimeout         time.Duration
	SessionTimeout      time.Duration
	StreamBuffer        int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "9000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:9000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "ollama"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HuggingFaceKey: getEnv("HUGGINGFACE_API_KEY", ""),
			RewriteModel:   getEnv("QUESTION_REWRITE_SMALL_MODEL", "phi4-mini"),
			MergeModel:     getEnv("QUESTION_REWRITE_LARGE_MODEL", "qwen3:4b"),
			AnswerModel:    getEnv("ANSWER_MODEL", "deepseek-r1:8b"),
		},
		Ask: AskConfig{
			RewriteCount:        getEnvAsInt("QUESTION_REWRITE_COUNT", 5),
			FanoutPolicy:        getEnv("ASK_FANOUT_POLICY", "fail_fast"),
			MergeChunkMode:      getEnv("ASK_MERGE_CHUNK_MODE", "double"),
			MergeChunkBase:      getEnvAsInt("ASK_MERGE_CHUNK_BASE", 126),
			MergeChunkIncrement: getEnvAsInt("ASK_MERGE_CHUNK_INCREMENT", 126),
			AnswerChunkMode:     getEnv("ASK_ANSWER_CHUNK_MODE", "none"),
			CallTimeout:         getEnvAsDuration("ASK_CALL_TIMEOUT", 2*time.Minute),
			SessionTimeout:      getEnvAsDuration("ASK_SESSION_TIMEOUT", 10*time.Minute),
			StreamBuffer:        getEnvAsInt("ASK_STREAM_BUFFER", 64),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
