package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"interview-trainer/internal/interview"
)

// VoiceCatalog представляет каталог голосов интервьюера
type VoiceCatalog struct {
	Voices []interview.VoiceAgent `yaml:"voices"`
}

// LoadVoices загружает каталог голосов из YAML файла
func LoadVoices(filename string) (*VoiceCatalog, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", filename, err)
	}

	var catalog VoiceCatalog
	err = yaml.Unmarshal(data, &catalog)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML: %w", err)
	}

	if len(catalog.Voices) == 0 {
		return nil, fmt.Errorf("каталог голосов пуст")
	}

	seen := make(map[string]bool)
	for i, v := range catalog.Voices {
		if v.ID == "" {
			return nil, fmt.Errorf("голос %d должен иметь id", i)
		}
		if seen[v.ID] {
			return nil, fmt.Errorf("голос %q указан дважды", v.ID)
		}
		seen[v.ID] = true

		if v.Voice == "" {
			return nil, fmt.Errorf("голос %q должен иметь voice", v.ID)
		}
		if v.Name == "" {
			return nil, fmt.Errorf("голос %q должен иметь name", v.ID)
		}
	}

	return &catalog, nil
}

// Get возвращает голос по идентификатору
func (c *VoiceCatalog) Get(id string) (interview.VoiceAgent, error) {
	for _, v := range c.Voices {
		if v.ID == id {
			return v, nil
		}
	}
	return interview.VoiceAgent{}, fmt.Errorf("голос %q не найден", id)
}

// ForLanguage возвращает голоса, подходящие для языка интервью.
// Голос без языка считается универсальным.
func (c *VoiceCatalog) ForLanguage(lang string) []interview.VoiceAgent {
	var out []interview.VoiceAgent
	for _, v := range c.Voices {
		if v.Language == "" || v.Language == lang {
			out = append(out, v)
		}
	}
	return out
}
