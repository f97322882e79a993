package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"interview-trainer/internal/api"
	"interview-trainer/internal/config"
	"interview-trainer/internal/interview"
	"interview-trainer/internal/prompts"
)

// ChatClient — минимальный контракт AI-клиента, нужный конвейеру вопросов
type ChatClient interface {
	ChatJSON(ctx context.Context, messages []openai.ChatCompletionMessage) (string, *api.Usage, error)
}

// Service представляет конвейер вопросов: генерация списка и оценка ответов
type Service struct {
	client   ChatClient
	strategy DifficultyStrategy
}

// New создает новый конвейер вопросов со стратегией сложности по умолчанию
func New(client ChatClient) *Service {
	return &Service{
		client:   client,
		strategy: DefaultStrategy(),
	}
}

// NewWithStrategy создает конвейер с заданной стратегией адаптивной сложности
func NewWithStrategy(client ChatClient, strategy DifficultyStrategy) *Service {
	return &Service{
		client:   client,
		strategy: strategy,
	}
}

// Strategy возвращает активную стратегию адаптивной сложности
func (s *Service) Strategy() DifficultyStrategy {
	return s.strategy
}

// generatedQuestion — сырой вопрос из JSON-ответа модели
type generatedQuestion struct {
	Text           string `json:"text"`
	Type           string `json:"type"`
	Difficulty     string `json:"difficulty"`
	ExpectedAnswer string `json:"expected_answer"`
}

// Generate генерирует список вопросов под профиль вакансии, уровень и язык.
// Вопросы типа resume_based включаются только для уровня >= 2 при наличии резюме.
func (s *Service) Generate(ctx context.Context, profile *interview.JobProfile, level config.Level, language string) ([]interview.Question, error) {
	if profile == nil || profile.Title == "" {
		return nil, &interview.ValidationError{Field: "job_profile", Reason: "профиль вакансии не заполнен"}
	}

	includeResume := level.ID >= 2 && strings.TrimSpace(profile.ResumeText) != ""

	count := level.MinQuestions
	if level.MaxQuestions > level.MinQuestions {
		count += rand.Intn(level.MaxQuestions - level.MinQuestions + 1)
	}

	prompt := prompts.BuildGenerationPrompt(profile, level.ID, count, language, includeResume)

	content, _, err := s.client.ChatJSON(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации вопросов: %w", err)
	}

	var raw []generatedQuestion
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("ошибка парсинга списка вопросов: %w", err)
	}

	questions := make([]interview.Question, 0, len(raw))
	for _, q := range raw {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			continue
		}

		qType := normalizeType(q.Type)
		if qType == interview.QuestionResumeBased && !includeResume {
			qType = interview.QuestionBehavioral
		}

		questions = append(questions, interview.Question{
			Index:          len(questions),
			Text:           text,
			Type:           qType,
			Difficulty:     normalizeDifficulty(q.Difficulty),
			ExpectedAnswer: strings.TrimSpace(q.ExpectedAnswer),
		})
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("сервис вернул пустой список вопросов")
	}

	return questions, nil
}

// evaluationResult — сырой результат оценки из JSON-ответа модели
type evaluationResult struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Evaluate оценивает ответ кандидата на один вопрос.
// Повторных попыток нет — при ошибке вызывающая сторона повторяет сабмит.
func (s *Service) Evaluate(ctx context.Context, question *interview.Question, answerText, jobTitle string) (int, string, error) {
	prompt := prompts.BuildEvaluationPrompt(question, answerText, jobTitle)

	content, _, err := s.client.ChatJSON(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt},
	})
	if err != nil {
		return 0, "", fmt.Errorf("ошибка оценки ответа: %w", err)
	}

	var result evaluationResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return 0, "", fmt.Errorf("ошибка парсинга оценки: %w", err)
	}

	score := result.Score
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score, strings.TrimSpace(result.Feedback), nil
}

// EstimateTokenCost возвращает грубую оценку стоимости пары вопрос-ответ
// в условных единицах: ceil((len(question) + len(answer)) / 4).
// Это приближение для квоты, а не биллинговая величина.
func EstimateTokenCost(questionText, answerText string) int {
	total := len(questionText) + len(answerText)
	return (total + 3) / 4
}

func normalizeType(raw string) interview.QuestionType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "technical":
		return interview.QuestionTechnical
	case "behavioral":
		return interview.QuestionBehavioral
	case "scenario":
		return interview.QuestionScenario
	case "resume_based", "resume-based", "resume":
		return interview.QuestionResumeBased
	default:
		return interview.QuestionTechnical
	}
}

func normalizeDifficulty(raw string) interview.Difficulty {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy":
		return interview.DifficultyEasy
	case "hard":
		return interview.DifficultyHard
	default:
		return interview.DifficultyMedium
	}
}
