package config

import (
	"os"
	"strconv"
	"time"
)

type AppConfig struct {
	OpenAI  OpenAIConfig
	Media   MediaConfig
	Storage StorageConfig
}

type MediaConfig struct {
	EnableCamera    bool
	PlayerCommand   string
	RecorderCommand string
	CaptureTimeout  time.Duration
}

type StorageConfig struct {
	DBPath     string
	ResultsDir string
}

func LoadAppConfig() *AppConfig {
	return &AppConfig{
		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o"),
			TTSModel:    getEnv("OPENAI_TTS_MODEL", "tts-1"),
			STTModel:    getEnv("OPENAI_STT_MODEL", "whisper-1"),
			MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 4000),
			Temperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.3),
		},
		Media: MediaConfig{
			EnableCamera:    getEnvAsBool("MEDIA_ENABLE_CAMERA", false),
			PlayerCommand:   getEnv("MEDIA_PLAYER_COMMAND", ""),
			RecorderCommand: getEnv("MEDIA_RECORDER_COMMAND", ""),
			CaptureTimeout:  getEnvAsDuration("MEDIA_CAPTURE_TIMEOUT", 2*time.Minute),
		},
		Storage: StorageConfig{
			DBPath:     getEnv("STORAGE_DB_PATH", "interview-trainer.db"),
			ResultsDir: getEnv("STORAGE_RESULTS_DIR", "results"),
		},
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
