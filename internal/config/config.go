package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
	Discord  DiscordConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	EventLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	UploadGuardDriver  string // "memory" or "redis"
	EventTopic         string
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI      string
	HuggingFace string
	JwtSecret   string
}

type AIConfig struct {
	EmbeddingProvider   string // "openai" or "none"
	EmbeddingModel      string
	EmbeddingDimensions int
	LLMProvider         string // "openai", "ollama" or "huggingface"
	LLMModel            string
	OpenAIBaseURL       string
	OllamaBaseURL       string
	HuggingFaceBaseURL  string
	Temperature         float64
}

type RagConfig struct {
	ChunkSize           int
	ChunkOverlap        int
	RetrievalK          int
	StageContextChunks  int
	ContextTokenBudget  int
	HistoryKeep         int
	SegmentLimit        int
	SegmentBuffer       int
	ChatInputCostPer1K  float64
	ChatOutputCostPer1K float64
	EmbeddingCostPer1K  float64
	AnswerMaxTokens     int
	PredictionMaxTokens int
	SummaryMaxTokens    int
	EmbeddingWorkers    int
}

type DiscordConfig struct {
	Token string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "biomeai.log"),
			EventLogFilePath:   getEnv("EVENT_LOG_FILE_PATH", "biomeai-events.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			UploadGuardDriver:  strings.ToLower(getEnv("UPLOAD_GUARD_DRIVER", "memory")),
			EventTopic:         getEnv("EVENT_TOPIC", "biomeai.events"),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI:      getEnv("OPENAI_API_KEY", ""),
			HuggingFace: getEnv("HUGGINGFACE_API_KEY", ""),
			JwtSecret:   getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
			LLMProvider:         getEnv("LLM_PROVIDER", "openai"),
			LLMModel:            getEnv("LLM_MODEL", "gpt-4o"),
			OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HuggingFaceBaseURL:  getEnv("HUGGINGFACE_BASE_URL", ""),
			Temperature:         getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		},
		Rag: RagConfig{
			ChunkSize:           getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:        getEnvAsInt("CHUNK_OVERLAP", 200),
			RetrievalK:          getEnvAsInt("MAX_CHUNKS_PER_QUERY", 5),
			StageContextChunks:  getEnvAsInt("STAGE_CONTEXT_CHUNKS", 3),
			ContextTokenBudget:  int(float64(getEnvAsInt("MAX_CONTEXT_TOKENS", 16000)) * 0.8),
			HistoryKeep:         getEnvAsInt("HISTORY_KEEP", 10),
			SegmentLimit:        getEnvAsInt("MESSAGE_LIMIT", 2000),
			SegmentBuffer:       getEnvAsInt("MESSAGE_BUFFER", 100),
			ChatInputCostPer1K:  getEnvAsFloat("CHAT_INPUT_COST_PER_1K", 0.0025),
			ChatOutputCostPer1K: getEnvAsFloat("CHAT_OUTPUT_COST_PER_1K", 0.01),
			EmbeddingCostPer1K:  getEnvAsFloat("EMBEDDING_COST_PER_1K", 0.00002),
			AnswerMaxTokens:     getEnvAsInt("ANSWER_MAX_TOKENS", 400),
			PredictionMaxTokens: getEnvAsInt("PREDICTION_MAX_TOKENS", 500),
			SummaryMaxTokens:    getEnvAsInt("SUMMARY_MAX_TOKENS", 800),
			EmbeddingWorkers:    getEnvAsInt("EMBEDDING_WORKERS", 4),
		},
		Discord: DiscordConfig{
			Token: getEnv("DISCORD_TOKEN", ""),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// LLMCredentials returns the base URL and key for the configured chat backend.
func (c *Config) LLMCredentials() (baseURL, apiKey string) {
	switch c.Ai.LLMProvider {
	case "ollama":
		return c.Ai.OllamaBaseURL, ""
	case "huggingface":
		return c.Ai.HuggingFaceBaseURL, c.Keys.HuggingFace
	default:
		return c.Ai.OpenAIBaseURL, c.Keys.OpenAI
	}
}

// Validate checks settings every binary needs. requireDiscord and requireDB
// are set by binaries that connect to those services.
func (c *Config) Validate(requireDiscord, requireDB bool) error {
	var errs []error

	if requireDiscord && c.Discord.Token == "" {
		errs = append(errs, errors.New("DISCORD_TOKEN is required"))
	}
	if requireDB && c.Database.Connection == "" {
		errs = append(errs, errors.New("DB_CONNECTION_STRING is required"))
	}
	needsOpenAI := c.Ai.LLMProvider == "openai" || c.Ai.EmbeddingProvider == "openai"
	if needsOpenAI && c.Keys.OpenAI == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
	}
	if c.Ai.LLMProvider == "huggingface" && c.Keys.HuggingFace == "" {
		errs = append(errs, errors.New("HUGGINGFACE_API_KEY is required for the huggingface provider"))
	}
	if c.Rag.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.Rag.ChunkSize))
	}
	if c.Rag.ChunkOverlap < 0 || c.Rag.ChunkOverlap >= c.Rag.ChunkSize {
		errs = append(errs, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.Rag.ChunkOverlap))
	}
	if c.Rag.SegmentBuffer >= c.Rag.SegmentLimit {
		errs = append(errs, fmt.Errorf("MESSAGE_BUFFER must be smaller than MESSAGE_LIMIT"))
	}
	switch strings.ToLower(c.App.UploadGuardDriver) {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("UPLOAD_GUARD_DRIVER must be memory or redis, got %q", c.App.UploadGuardDriver))
	}

	return errors.Join(errs...)
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
