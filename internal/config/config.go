package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	// Server
	HTTPAddr string
	LogLevel string

	// OpenRouter (text model endpoint)
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	TextModel         string

	// Image providers
	InferenceAPIToken   string   // token for the hosted inference providers
	InferenceBaseURL    string   // e.g. https://api-inference.huggingface.co/models
	ImageModels         []string // primary model first, then alternates
	GeminiAPIKey        string   // optional extra image provider
	GeminiImageModel    string
	ImageFallbackURL    string // templated URL provider base, e.g. https://image.pollinations.ai/prompt
	ImageWidth          int
	ImageHeight         int
	ProviderTimeout     time.Duration // per provider attempt
	SlideResolveTimeout time.Duration // overall deadline per slide
	MaxConcurrentSlides int

	// Chart rendering
	ChartFontPath string // optional TTF; built-in bitmap face is used when empty

	// Content synthesis
	RandomSeed int64 // 0 = seed from time

	// Events (optional; disabled when no brokers configured)
	KafkaBrokers     []string
	KafkaTopicEvents string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		TextModel:         getEnv("TEXT_MODEL", "meta-llama/llama-3.1-8b-instruct:free"),

		InferenceAPIToken: getEnv("INFERENCE_API_TOKEN", ""),
		InferenceBaseURL:  getEnv("INFERENCE_BASE_URL", "https://api-inference.huggingface.co/models"),
		ImageModels: getEnvList("IMAGE_MODELS",
			"stabilityai/stable-diffusion-xl-base-1.0,runwayml/stable-diffusion-v1-5,prompthero/openjourney"),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiImageModel:    getEnv("GEMINI_MODEL_IMAGE", "gemini-3-pro-image-preview"),
		ImageFallbackURL:    getEnv("IMAGE_FALLBACK_URL", "https://image.pollinations.ai/prompt"),
		ImageWidth:          getEnvInt("IMAGE_WIDTH", 1024),
		ImageHeight:         getEnvInt("IMAGE_HEIGHT", 1024),
		ProviderTimeout:     getEnvDuration("PROVIDER_TIMEOUT", 15*time.Second),
		SlideResolveTimeout: getEnvDuration("SLIDE_RESOLVE_TIMEOUT", 45*time.Second),
		MaxConcurrentSlides: clampMin(getEnvInt("MAX_CONCURRENT_SLIDES", 4), 1),

		ChartFontPath: getEnv("CHART_FONT_PATH", ""),

		RandomSeed: getEnvInt64("DECKS_RANDOM_SEED", 0),

		KafkaBrokers:     getEnvList("KAFKA_BROKERS", ""),
		KafkaTopicEvents: getEnv("KAFKA_TOPIC_EVENTS", "decks.events.v1"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList parses a comma-separated env value into a slice, skipping empty entries.
func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// clampMin returns v if v >= min, otherwise min. Used to ensure config values are in valid range.
func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}
