package storage

import (
	"time"

	"interview-trainer/internal/interview"
)

// InterviewRecord представляет сохраненную запись одного интервью
type InterviewRecord struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	JobProfileID string           `json:"job_profile_id"`
	Level        int              `json:"level"`
	Language     string           `json:"language"`
	VoiceAgentID string           `json:"voice_agent_id"`
	Status       interview.Status `json:"status"`
	Score        *int             `json:"score,omitempty"`
	TokensUsed   int              `json:"tokens_used"`
	Responses    []RecordResponse `json:"responses"`
	CreatedAt    time.Time        `json:"created_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}

// RecordResponse представляет один сохраненный ответ
type RecordResponse struct {
	QuestionText   string `json:"question_text"`
	AnswerText     string `json:"answer_text"`
	Score          int    `json:"score"`
	Feedback       string `json:"feedback"`
	ExpectedAnswer string `json:"expected_answer,omitempty"`
	QuestionType   string `json:"question_type,omitempty"`
}

// ProfileUsage представляет накопленный расход пользователя
type ProfileUsage struct {
	UserID              string    `json:"user_id"`
	PlanID              string    `json:"plan_id"`
	TokensUsed          int       `json:"tokens_used"`
	InterviewsCompleted int       `json:"interviews_completed"`
	UpdatedAt           time.Time `json:"updated_at"`
}
