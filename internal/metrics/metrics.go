package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu                 sync.RWMutex
	SessionsStarted    int64
	SessionsCompleted  int64
	SessionsAborted    int64
	QuestionsAsked     int64
	AnswersEvaluated   int64
	NarrationsPlayed   int64
	TranscriptionsDone int64
	APICallsTotal      int64
	APICallsSuccessful int64
	TokensConsumed     int64
	LastUpdateTime     time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		LastUpdateTime: time.Now(),
	}
}

func (m *Metrics) IncrementSessionsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionsStarted++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementSessionsCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionsCompleted++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementSessionsAborted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionsAborted++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementQuestionsAsked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuestionsAsked++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementAnswersEvaluated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnswersEvaluated++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementNarrationsPlayed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NarrationsPlayed++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementTranscriptionsDone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TranscriptionsDone++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementAPICall(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.APICallsTotal++
	if success {
		m.APICallsSuccessful++
	}
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) AddTokensConsumed(amount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TokensConsumed += int64(amount)
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) GetSnapshot() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Metrics{
		SessionsStarted:    m.SessionsStarted,
		SessionsCompleted:  m.SessionsCompleted,
		SessionsAborted:    m.SessionsAborted,
		QuestionsAsked:     m.QuestionsAsked,
		AnswersEvaluated:   m.AnswersEvaluated,
		NarrationsPlayed:   m.NarrationsPlayed,
		TranscriptionsDone: m.TranscriptionsDone,
		APICallsTotal:      m.APICallsTotal,
		APICallsSuccessful: m.APICallsSuccessful,
		TokensConsumed:     m.TokensConsumed,
		LastUpdateTime:     m.LastUpdateTime,
	}
}
