package config

import "fmt"

// Config представляет конфигурацию тренажёра интервью
type Config struct {
	Interview InterviewConfig `yaml:"interview_config"`
	Levels    []Level         `yaml:"levels"`
	Plans     []Plan          `yaml:"plans"`
}

// InterviewConfig содержит общие настройки интервью
type InterviewConfig struct {
	AutoNarrate     bool     `yaml:"auto_narrate"`
	DefaultLanguage string   `yaml:"default_language"`
	Languages       []string `yaml:"languages"`
}

// Level представляет один уровень сложности интервью
type Level struct {
	ID           int    `yaml:"id"`
	Name         string `yaml:"name"`
	Title        string `yaml:"title"`
	MinQuestions int    `yaml:"min_questions"`
	MaxQuestions int    `yaml:"max_questions"`
	Adaptive     bool   `yaml:"adaptive"`
}

// Plan представляет тарифный план с лимитом токенов
type Plan struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	TokenLimit int    `yaml:"token_limit"`
	Free       bool   `yaml:"free"`
}

// Методы для удобного доступа к конфигурации
func (c *Config) GetLevel(id int) (Level, error) {
	for _, l := range c.Levels {
		if l.ID == id {
			return l, nil
		}
	}
	return Level{}, fmt.Errorf("уровень %d не найден в конфигурации", id)
}

func (c *Config) GetPlan(id string) (Plan, error) {
	for _, p := range c.Plans {
		if p.ID == id {
			return p, nil
		}
	}
	return Plan{}, fmt.Errorf("план %q не найден в конфигурации", id)
}

// GetFreePlan возвращает бесплатный план (стартовый для нового профиля)
func (c *Config) GetFreePlan() Plan {
	for _, p := range c.Plans {
		if p.Free {
			return p
		}
	}
	return Plan{}
}

func (c *Config) GetLanguages() []string {
	return c.Interview.Languages
}

// HasLanguage проверяет, поддерживается ли язык интервью
func (c *Config) HasLanguage(lang string) bool {
	for _, l := range c.Interview.Languages {
		if l == lang {
			return true
		}
	}
	return false
}
