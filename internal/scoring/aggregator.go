package scoring

import (
	"math"

	"interview-trainer/internal/interview"
)

// Summarize сводит список ответов к итоговой оценке и счетчикам корзин.
// Чистая функция: безопасно пересчитывать сколько угодно раз.
// Для пустого списка возвращает nil — сессия без ответов не имеет оценки.
func Summarize(responses []interview.Response) *interview.ScoreSummary {
	if len(responses) == 0 {
		return nil
	}

	sum := 0
	summary := &interview.ScoreSummary{}
	for _, r := range responses {
		sum += r.Score
		switch {
		case r.Score >= 80:
			summary.Excellent++
		case r.Score >= 60:
			summary.Good++
		default:
			summary.NeedsWork++
		}
	}

	summary.FinalScore = int(math.Round(float64(sum) / float64(len(responses))))
	return summary
}
