package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-trainer/internal/interview"
)

func responsesWithScores(scores ...int) []interview.Response {
	out := make([]interview.Response, len(scores))
	for i, s := range scores {
		out[i] = interview.Response{QuestionIndex: i, Score: s}
	}
	return out
}

func TestSummarize(t *testing.T) {
	summary := Summarize(responsesWithScores(90, 85, 70, 60, 50, 40))
	require.NotNil(t, summary)

	assert.Equal(t, 66, summary.FinalScore)
	assert.Equal(t, 2, summary.Excellent)
	assert.Equal(t, 2, summary.Good)
	assert.Equal(t, 2, summary.NeedsWork)
}

func TestSummarizePartial(t *testing.T) {
	// Досрочное завершение: 3 ответа по 100 баллов
	summary := Summarize(responsesWithScores(100, 100, 100))
	require.NotNil(t, summary)

	assert.Equal(t, 100, summary.FinalScore)
	assert.Equal(t, 3, summary.Excellent)
	assert.Equal(t, 0, summary.Good)
	assert.Equal(t, 0, summary.NeedsWork)
}

func TestSummarizeEmpty(t *testing.T) {
	// Без ответов оценки нет вовсе, а не ноль
	assert.Nil(t, Summarize(nil))
	assert.Nil(t, Summarize([]interview.Response{}))
}

func TestSummarizeRounding(t *testing.T) {
	// 70 + 75 = 72.5 → 73
	summary := Summarize(responsesWithScores(70, 75))
	require.NotNil(t, summary)
	assert.Equal(t, 73, summary.FinalScore)
}

func TestSummarizeBucketBoundaries(t *testing.T) {
	summary := Summarize(responsesWithScores(80, 79, 60, 59))
	require.NotNil(t, summary)

	assert.Equal(t, 1, summary.Excellent)
	assert.Equal(t, 2, summary.Good)
	assert.Equal(t, 1, summary.NeedsWork)
}

func TestSummarizeIsPure(t *testing.T) {
	responses := responsesWithScores(90, 50)
	first := Summarize(responses)
	second := Summarize(responses)

	assert.Equal(t, first, second)
	assert.Equal(t, 90, responses[0].Score)
}
