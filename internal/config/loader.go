package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load загружает конфигурацию из YAML файла
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", filename, err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML: %w", err)
	}

	// Валидация конфигурации
	err = validateConfig(&config)
	if err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return &config, nil
}

// validateConfig проверяет корректность конфигурации
func validateConfig(config *Config) error {
	if len(config.Levels) == 0 {
		return fmt.Errorf("levels не может быть пустым")
	}

	if len(config.Interview.Languages) == 0 {
		return fmt.Errorf("languages не может быть пустым")
	}

	if !config.HasLanguage(config.Interview.DefaultLanguage) {
		return fmt.Errorf("default_language %q отсутствует в languages", config.Interview.DefaultLanguage)
	}

	// Проверяем ID уровней
	for i, level := range config.Levels {
		expectedID := i + 1
		if level.ID != expectedID {
			return fmt.Errorf("уровень %d имеет неверный ID: ожидался %d, получен %d",
				i, expectedID, level.ID)
		}

		if level.Name == "" {
			return fmt.Errorf("уровень %d должен иметь name", level.ID)
		}

		if level.Title == "" {
			return fmt.Errorf("уровень %d должен иметь title", level.ID)
		}

		if level.MinQuestions <= 0 {
			return fmt.Errorf("уровень %d: min_questions должно быть больше 0", level.ID)
		}

		if level.MaxQuestions < level.MinQuestions {
			return fmt.Errorf("уровень %d: max_questions (%d) меньше min_questions (%d)",
				level.ID, level.MaxQuestions, level.MinQuestions)
		}
	}

	if len(config.Plans) == 0 {
		return fmt.Errorf("plans не может быть пустым")
	}

	freeCount := 0
	for _, plan := range config.Plans {
		if plan.ID == "" {
			return fmt.Errorf("план должен иметь id")
		}
		if plan.TokenLimit <= 0 {
			return fmt.Errorf("план %q: token_limit должен быть больше 0", plan.ID)
		}
		if plan.Free {
			freeCount++
		}
	}

	if freeCount != 1 {
		return fmt.Errorf("должен быть ровно один бесплатный план, найдено: %d", freeCount)
	}

	return nil
}
