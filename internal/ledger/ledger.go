package ledger

import (
	"sync"

	"interview-trainer/internal/config"
	"interview-trainer/internal/interview"
)

// Ledger ведет учет потраченных условных токенов против лимита плана.
// Лимит проверяется только на границах фаз: старт сессии и переход к
// следующему вопросу. Внутри вопроса лимит не применяется, поэтому
// завершение вопроса может увести used за limit — это мягкий лимит.
type Ledger struct {
	mu           sync.Mutex
	used         int
	limit        int
	free         bool
	leftFreeTier bool
}

// New создает леджер для плана с уже накопленным расходом
func New(plan config.Plan, used int) *Ledger {
	return &Ledger{
		used:  used,
		limit: plan.TokenLimit,
		free:  plan.Free,
	}
}

// CanStart сообщает, можно ли начинать новую сессию или следующий вопрос
func (l *Ledger) CanStart() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used < l.limit
}

// Gate возвращает QuotaError, если лимит исчерпан
func (l *Ledger) Gate() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.used >= l.limit {
		return &interview.QuotaError{Used: l.used, Limit: l.limit}
	}
	return nil
}

// Consume списывает токены. Расход монотонно растет в пределах сессии.
func (l *Ledger) Consume(amount int) {
	if amount <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.used += amount
}

// ApplyPlan заменяет лимит при смене плана.
// Расход сбрасывается в 0 только при первом уходе с бесплатного тарифа;
// при любых последующих сменах (включая даунгрейды) расход сохраняется.
func (l *Ledger) ApplyPlan(plan config.Plan) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.free && !plan.Free && !l.leftFreeTier {
		l.used = 0
		l.leftFreeTier = true
	}

	l.limit = plan.TokenLimit
	l.free = plan.Free
}

func (l *Ledger) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}

func (l *Ledger) Limit() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limit
}
