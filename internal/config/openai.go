package config

import (
	"fmt"
	"os"
)

type OpenAIConfig struct {
	APIKey      string
	Model       string
	TTSModel    string
	STTModel    string
	MaxTokens   int
	Temperature float64
}

// LoadOpenAIConfig загружает конфигурацию OpenAI из переменных окружения
func LoadOpenAIConfig() *OpenAIConfig {
	config := &OpenAIConfig{
		APIKey:      os.Getenv("OPENAI_API_KEY"),
		Model:       getEnvOrDefault("OPENAI_MODEL", "gpt-4o"),
		TTSModel:    getEnvOrDefault("OPENAI_TTS_MODEL", "tts-1"),
		STTModel:    getEnvOrDefault("OPENAI_STT_MODEL", "whisper-1"),
		MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 4000),
		Temperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.3),
	}

	return config
}

// ValidateConfig проверяет корректность конфигурации
func (c *OpenAIConfig) ValidateConfig() error {
	if c.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("OPENAI_MAX_TOKENS must be positive")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("OPENAI_TEMPERATURE must be between 0 and 2")
	}

	return nil
}

// GetModelInfo возвращает информацию об используемых моделях
func (c *OpenAIConfig) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"model":       c.Model,
		"tts_model":   c.TTSModel,
		"stt_model":   c.STTModel,
		"max_tokens":  c.MaxTokens,
		"temperature": c.Temperature,
		"provider":    "OpenAI",
	}
}

// helper для чтения переменных окружения (строки)
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
