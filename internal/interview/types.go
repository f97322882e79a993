package interview

import "time"

// Phase представляет фазу сессии интервью
type Phase string

const (
	PhaseLoading        Phase = "loading"
	PhaseLevelSelection Phase = "level_selection"
	PhaseInterview      Phase = "interview"
	PhaseResults        Phase = "results"
)

// Status представляет статус записи интервью
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAborted    Status = "aborted"
)

// QuestionType представляет тип вопроса
type QuestionType string

const (
	QuestionTechnical   QuestionType = "technical"
	QuestionBehavioral  QuestionType = "behavioral"
	QuestionScenario    QuestionType = "scenario"
	QuestionResumeBased QuestionType = "resume_based"
)

// Difficulty представляет сложность вопроса
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// JobProfile представляет профиль вакансии, под которую проводится интервью.
// Неизменяем на всё время жизни сессии.
type JobProfile struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Skills          []string `json:"skills"`
	YearsExperience int      `json:"years_experience"`
	ResumeText      string   `json:"resume_text,omitempty"`
}

// VoiceAgent представляет синтетический голос интервьюера
type VoiceAgent struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Voice    string `yaml:"voice" json:"voice"`
	Language string `yaml:"language" json:"language"`
	Accent   string `yaml:"accent,omitempty" json:"accent,omitempty"`
}

// Question представляет один сгенерированный вопрос. После создания не изменяется.
type Question struct {
	Index          int          `json:"index"`
	Text           string       `json:"text"`
	Type           QuestionType `json:"type"`
	Difficulty     Difficulty   `json:"difficulty"`
	ExpectedAnswer string       `json:"expected_answer,omitempty"`
}

// Response представляет один принятый ответ с оценкой.
// Добавляется строго по одному на вопрос и никогда не удаляется.
type Response struct {
	QuestionIndex      int    `json:"question_index"`
	QuestionText       string `json:"question_text"`
	AnswerText         string `json:"answer_text"`
	Score              int    `json:"score"`
	Feedback           string `json:"feedback"`
	EstimatedTokenCost int    `json:"estimated_token_cost"`
}

// ScoreSummary представляет итоговую оценку сессии
type ScoreSummary struct {
	FinalScore int `json:"final_score"`
	Excellent  int `json:"excellent"`  // score >= 80
	Good       int `json:"good"`       // 60 <= score < 80
	NeedsWork  int `json:"needs_work"` // score < 60
}

// Session представляет одну сессию интервью.
// Мутируется только через переходы SessionStateMachine.
type Session struct {
	ID           string        `json:"id"`
	Phase        Phase         `json:"phase"`
	Status       Status        `json:"status"`
	Level        int           `json:"level"`
	Language     string        `json:"language"`
	VoiceAgentID string        `json:"voice_agent_id"`
	JobProfileID string        `json:"job_profile_id"`
	Responses    []Response    `json:"responses"`
	Summary      *ScoreSummary `json:"summary,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

// TokensUsed возвращает суммарную оценочную стоимость всех ответов сессии
func (s *Session) TokensUsed() int {
	total := 0
	for _, r := range s.Responses {
		total += r.EstimatedTokenCost
	}
	return total
}
