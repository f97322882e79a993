package prompts

import (
	"fmt"
	"strings"

	"interview-trainer/internal/interview"
)

// BuildGenerationPrompt создает промпт для генерации списка вопросов интервью
func BuildGenerationPrompt(profile *interview.JobProfile, level, count int, language string, includeResume bool) string {
	var prompt strings.Builder

	prompt.WriteString("Ты опытный технический интервьюер. Подготовь вопросы для тренировочного собеседования.\n\n")

	prompt.WriteString("ВАКАНСИЯ:\n")
	prompt.WriteString(fmt.Sprintf("- Должность: %s\n", profile.Title))
	if profile.Description != "" {
		prompt.WriteString(fmt.Sprintf("- Описание: %s\n", profile.Description))
	}
	if len(profile.Skills) > 0 {
		prompt.WriteString(fmt.Sprintf("- Навыки: %s\n", strings.Join(profile.Skills, ", ")))
	}
	prompt.WriteString(fmt.Sprintf("- Опыт: %d лет\n\n", profile.YearsExperience))

	prompt.WriteString("ЖЕСТКИЕ ОГРАНИЧЕНИЯ:\n")
	prompt.WriteString(fmt.Sprintf("- Ровно %d вопросов\n", count))
	prompt.WriteString(fmt.Sprintf("- Уровень сложности интервью: %d из 3\n", level))
	prompt.WriteString(fmt.Sprintf("- Язык вопросов: %s\n", language))
	prompt.WriteString("- Типы вопросов: technical, behavioral, scenario")
	if includeResume {
		prompt.WriteString(", resume_based")
	}
	prompt.WriteString("\n- Сложность каждого вопроса: easy, medium или hard\n\n")

	if includeResume {
		prompt.WriteString("РЕЗЮМЕ КАНДИДАТА (добавь 2-3 вопроса типа resume_based по его содержанию):\n")
		prompt.WriteString(profile.ResumeText)
		prompt.WriteString("\n\n")
	}

	prompt.WriteString("ФОРМАТ ОТВЕТА:\n")
	prompt.WriteString("JSON массив объектов вида:\n")
	prompt.WriteString(`[{"text": "...", "type": "technical", "difficulty": "medium", "expected_answer": "..."}]`)
	prompt.WriteString("\n\nПРАВИЛА ЗАПОЛНЕНИЯ:\n")
	prompt.WriteString("- text: текст вопроса, понятный и конкретный\n")
	prompt.WriteString("- expected_answer: краткий эталонный ответ (2-3 предложения)\n")
	prompt.WriteString("- Вопросы должны покрывать указанные навыки\n\n")

	prompt.WriteString("ОТВЕТ (только JSON, без markdown и комментариев):")

	return prompt.String()
}

// BuildEvaluationPrompt создает промпт для оценки одного ответа кандидата
func BuildEvaluationPrompt(question *interview.Question, answerText, jobTitle string) string {
	var prompt strings.Builder

	prompt.WriteString("Ты опытный технический интервьюер. Оцени ответ кандидата на вопрос собеседования.\n\n")

	prompt.WriteString(fmt.Sprintf("ДОЛЖНОСТЬ: %s\n\n", jobTitle))
	prompt.WriteString(fmt.Sprintf("ВОПРОС: %s\n\n", question.Text))
	if question.ExpectedAnswer != "" {
		prompt.WriteString(fmt.Sprintf("ЭТАЛОННЫЙ ОТВЕТ: %s\n\n", question.ExpectedAnswer))
	}
	prompt.WriteString(fmt.Sprintf("ОТВЕТ КАНДИДАТА: %s\n\n", answerText))

	prompt.WriteString("КРИТЕРИИ ОЦЕНКИ:\n")
	prompt.WriteString("- Полнота и точность по существу вопроса\n")
	prompt.WriteString("- Структура и ясность изложения\n")
	prompt.WriteString("- Соответствие уровню должности\n\n")

	prompt.WriteString("ФОРМАТ ОТВЕТА:\n")
	prompt.WriteString(`{"score": 75, "feedback": "..."}`)
	prompt.WriteString("\n\nПРАВИЛА:\n")
	prompt.WriteString("- score: целое число от 0 до 100\n")
	prompt.WriteString("- feedback: 2-4 предложения на языке ответа кандидата, конкретно что хорошо и что улучшить\n\n")

	prompt.WriteString("ОТВЕТ (только JSON, без markdown и комментариев):")

	return prompt.String()
}
