package pipeline

import "interview-trainer/internal/interview"

// DifficultyStrategy выбирает сложность следующего вопроса по итогам предыдущего.
// Подключаемая стратегия: точная калибровка порогов не зафиксирована,
// пороговая эвристика ниже — значение по умолчанию.
type DifficultyStrategy interface {
	Next(prev interview.Difficulty, prevScore int) interview.Difficulty
}

// ThresholdStrategy повышает сложность при score >= RaiseAt,
// понижает при score < LowerAt, иначе оставляет прежнюю.
type ThresholdStrategy struct {
	RaiseAt int
	LowerAt int
}

// DefaultStrategy возвращает стратегию с порогами 80/50
func DefaultStrategy() *ThresholdStrategy {
	return &ThresholdStrategy{RaiseAt: 80, LowerAt: 50}
}

func (t *ThresholdStrategy) Next(prev interview.Difficulty, prevScore int) interview.Difficulty {
	if prevScore >= t.RaiseAt {
		return raise(prev)
	}
	if prevScore < t.LowerAt {
		return lower(prev)
	}
	return prev
}

func raise(d interview.Difficulty) interview.Difficulty {
	switch d {
	case interview.DifficultyEasy:
		return interview.DifficultyMedium
	default:
		return interview.DifficultyHard
	}
}

func lower(d interview.Difficulty) interview.Difficulty {
	switch d {
	case interview.DifficultyHard:
		return interview.DifficultyMedium
	default:
		return interview.DifficultyEasy
	}
}

// ReorderForScore переставляет оставшиеся вопросы так, чтобы следующим шёл
// вопрос желаемой сложности. Используется на адаптивном уровне.
// next — позиция следующего вопроса в списке. Список меняется на месте.
func ReorderForScore(questions []interview.Question, next int, prev *interview.Response, prevDifficulty interview.Difficulty, strategy DifficultyStrategy) {
	if strategy == nil || prev == nil || next <= 0 || next >= len(questions) {
		return
	}

	want := strategy.Next(prevDifficulty, prev.Score)
	if questions[next].Difficulty == want {
		return
	}

	for j := next + 1; j < len(questions); j++ {
		if questions[j].Difficulty == want {
			questions[next], questions[j] = questions[j], questions[next]
			return
		}
	}
	// Вопроса нужной сложности не осталось — порядок сохраняется
}
