package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"interview-trainer/internal/config"
	"interview-trainer/internal/interview"
	"interview-trainer/internal/ledger"
	"interview-trainer/internal/media"
	"interview-trainer/internal/metrics"
	"interview-trainer/internal/pipeline"
	"interview-trainer/internal/scoring"
	"interview-trainer/internal/storage"
)

// Pipeline — контракт конвейера вопросов, нужный машине состояний
type Pipeline interface {
	Generate(ctx context.Context, profile *interview.JobProfile, level config.Level, language string) ([]interview.Question, error)
	Evaluate(ctx context.Context, question *interview.Question, answerText, jobTitle string) (int, string, error)
	Strategy() pipeline.DifficultyStrategy
}

// Narrator — контракт моста речи, нужный машине состояний
type Narrator interface {
	Narrate(ctx context.Context, text, voice string) (*media.Handle, error)
	CancelNarration()
	Transcribe(ctx context.Context, audio []byte, format, language string) (string, error)
}

// Gateway — контракт шлюза персистентности.
// Все записи best-effort: их сбои логируются, но не блокируют показ результата.
type Gateway interface {
	LatestJobProfile(ctx context.Context) (*interview.JobProfile, error)
	GetJobProfile(ctx context.Context, id string) (*interview.JobProfile, error)
	CreateInterviewRecord(ctx context.Context, record *storage.InterviewRecord) (*storage.InterviewRecord, error)
	UpdateInterviewRecord(ctx context.Context, id string, status interview.Status, score *int, tokensUsed int, completedAt *time.Time, responses []storage.RecordResponse) error
	DeleteInterviewRecord(ctx context.Context, id string) error
	UpdateProfileUsage(ctx context.Context, userID, planID string, tokensUsed, interviewsCompleted int) error
}

// Machine — машина состояний сессии: Loading → LevelSelection → Interview → Results.
// Владеет сессией единолично и выполняет все переходы. На каждом пути выхода
// из фазы интервью освобождает все медиа-ресурсы (освобождение идемпотентно,
// поэтому дублирующие вызовы с разных путей выхода безвредны).
type Machine struct {
	cfg      *config.Config
	voices   *config.VoiceCatalog
	pipeline Pipeline
	speech   Narrator
	media    *media.Manager
	ledger   *ledger.Ledger
	store    Gateway
	metrics  *metrics.Metrics
	userID   string
	planID   string

	mu            sync.Mutex
	phase         interview.Phase
	session       *interview.Session
	profile       *interview.JobProfile
	questions     []interview.Question
	questionIndex int
	level         config.Level
	language      string
	voice         interview.VoiceAgent
	voiceChosen   bool
	recordID      string
	inFlight      bool
	epoch         int // растет на каждом выходе из интервью: поздние колбэки становятся no-op
	persistErr    error
}

type Deps struct {
	Config   *config.Config
	Voices   *config.VoiceCatalog
	Pipeline Pipeline
	Speech   Narrator
	Media    *media.Manager
	Ledger   *ledger.Ledger
	Store    Gateway
	Metrics  *metrics.Metrics
	UserID   string
	PlanID   string
}

func NewMachine(deps Deps) *Machine {
	return &Machine{
		cfg:      deps.Config,
		voices:   deps.Voices,
		pipeline: deps.Pipeline,
		speech:   deps.Speech,
		media:    deps.Media,
		ledger:   deps.Ledger,
		store:    deps.Store,
		metrics:  deps.Metrics,
		userID:   deps.UserID,
		planID:   deps.PlanID,
		phase:    interview.PhaseLoading,
		language: deps.Config.Interview.DefaultLanguage,
	}
}

// Phase возвращает текущую фазу
func (m *Machine) Phase() interview.Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Session возвращает копию текущей сессии (nil до её создания)
func (m *Machine) Session() *interview.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	copied := *m.session
	copied.Responses = append([]interview.Response(nil), m.session.Responses...)
	return &copied
}

// Profile возвращает профиль вакансии сессии
func (m *Machine) Profile() *interview.JobProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

// Start загружает профиль вакансии и переводит машину в выбор уровня.
// Ошибка загрузки терминальна: вызывающая сторона уходит с экрана.
func (m *Machine) Start(ctx context.Context, jobProfileID string) error {
	m.mu.Lock()
	if m.phase != interview.PhaseLoading {
		m.mu.Unlock()
		return fmt.Errorf("сессия уже запущена (фаза %s)", m.phase)
	}
	m.mu.Unlock()

	var profile *interview.JobProfile
	var err error
	if jobProfileID != "" {
		profile, err = m.store.GetJobProfile(ctx, jobProfileID)
	} else {
		profile, err = m.store.LatestJobProfile(ctx)
	}
	if err != nil {
		return fmt.Errorf("ошибка загрузки профиля вакансии: %w", err)
	}

	m.mu.Lock()
	m.profile = profile
	m.phase = interview.PhaseLevelSelection
	m.mu.Unlock()
	return nil
}

// SelectLanguage задает язык интервью (первый шаг выбора)
func (m *Machine) SelectLanguage(lang string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != interview.PhaseLevelSelection {
		return fmt.Errorf("выбор языка доступен только в фазе выбора уровня")
	}
	if !m.cfg.HasLanguage(lang) {
		return &interview.ValidationError{Field: "language", Reason: fmt.Sprintf("язык %q не поддерживается", lang)}
	}

	m.language = lang
	// Язык сменился — выбранный голос мог перестать подходить
	if m.voiceChosen && m.voice.Language != "" && m.voice.Language != lang {
		m.voiceChosen = false
	}
	return nil
}

// SelectVoice задает голос интервьюера (второй шаг выбора)
func (m *Machine) SelectVoice(voiceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != interview.PhaseLevelSelection {
		return fmt.Errorf("выбор голоса доступен только в фазе выбора уровня")
	}

	voice, err := m.voices.Get(voiceID)
	if err != nil {
		return &interview.ValidationError{Field: "voice", Reason: err.Error()}
	}
	if voice.Language != "" && voice.Language != m.language {
		return &interview.ValidationError{Field: "voice", Reason: fmt.Sprintf("голос %q не подходит для языка %q", voiceID, m.language)}
	}

	m.voice = voice
	m.voiceChosen = true
	return nil
}

// SelectLevel завершает выбор: проверяет квоту, генерирует вопросы и
// переводит машину в фазу интервью. При QuotaError и ошибке генерации
// машина остается в выборе уровня.
func (m *Machine) SelectLevel(ctx context.Context, levelID int) error {
	m.mu.Lock()
	if m.phase != interview.PhaseLevelSelection {
		m.mu.Unlock()
		return fmt.Errorf("выбор уровня доступен только в фазе выбора уровня")
	}
	if !m.voiceChosen {
		m.mu.Unlock()
		return &interview.ValidationError{Field: "voice", Reason: "сначала выберите голос интервьюера"}
	}

	level, err := m.cfg.GetLevel(levelID)
	if err != nil {
		m.mu.Unlock()
		return &interview.ValidationError{Field: "level", Reason: err.Error()}
	}

	// Квота проверяется на границе фазы: исчерпана — интервью не начинается
	if err := m.ledger.Gate(); err != nil {
		m.mu.Unlock()
		return err
	}

	profile := m.profile
	language := m.language
	m.mu.Unlock()

	questions, err := m.pipeline.Generate(ctx, profile, level, language)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != interview.PhaseLevelSelection {
		// Пока шла генерация, машину успели закрыть
		return fmt.Errorf("сессия прервана во время генерации вопросов")
	}

	now := time.Now()
	m.level = level
	m.questions = questions
	m.questionIndex = 0
	m.session = &interview.Session{
		ID:           uuid.New().String(),
		Phase:        interview.PhaseInterview,
		Status:       interview.StatusInProgress,
		Level:        level.ID,
		Language:     language,
		VoiceAgentID: m.voice.ID,
		JobProfileID: profile.ID,
		CreatedAt:    now,
	}
	m.phase = interview.PhaseInterview
	m.persistErr = nil
	m.metrics.IncrementSessionsStarted()
	m.metrics.IncrementQuestionsAsked()

	// Запись в хранилище best-effort
	record, err := m.store.CreateInterviewRecord(ctx, &storage.InterviewRecord{
		ID:           m.session.ID,
		UserID:       m.userID,
		JobProfileID: profile.ID,
		Level:        level.ID,
		Language:     language,
		VoiceAgentID: m.voice.ID,
		Status:       interview.StatusInProgress,
	})
	if err != nil {
		log.Printf("⚠️ Не удалось создать запись интервью: %v", err)
	} else {
		m.recordID = record.ID
	}

	// Камера опциональна: отказ деградирует сессию до "без видео"
	if _, err := m.media.AcquireCamera(ctx); err != nil {
		log.Printf("📷 Камера недоступна, интервью продолжается без видео: %v", err)
	}

	if m.cfg.Interview.AutoNarrate {
		m.narrateAsyncLocked(ctx, m.questions[0].Text)
	}

	return nil
}

// CurrentQuestion возвращает текущий вопрос фазы интервью
func (m *Machine) CurrentQuestion() (*interview.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != interview.PhaseInterview {
		return nil, fmt.Errorf("нет активного вопроса вне фазы интервью")
	}
	q := m.questions[m.questionIndex]
	return &q, nil
}

// QuestionProgress возвращает номер текущего вопроса и их общее число
func (m *Machine) QuestionProgress() (current, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.questionIndex + 1, len(m.questions)
}

// SubmitAnswer принимает текстовый ответ на текущий вопрос.
// Пустой ответ отклоняется без перехода. Одновременно допускается не больше
// одной оценки: повторный сабмит до завершения предыдущего — ошибка вызывающей
// стороны. Возвращает принятый ответ и признак завершения интервью.
func (m *Machine) SubmitAnswer(ctx context.Context, text string) (*interview.Response, bool, error) {
	m.mu.Lock()
	if m.phase != interview.PhaseInterview {
		m.mu.Unlock()
		return nil, false, fmt.Errorf("ответ принимается только в фазе интервью")
	}
	if m.inFlight {
		m.mu.Unlock()
		return nil, false, fmt.Errorf("оценка предыдущего ответа еще выполняется")
	}
	if strings.TrimSpace(text) == "" {
		m.mu.Unlock()
		return nil, false, &interview.ValidationError{Field: "answer", Reason: "ответ не может быть пустым"}
	}

	m.inFlight = true
	question := m.questions[m.questionIndex]
	jobTitle := m.profile.Title
	m.mu.Unlock()

	score, feedback, err := m.pipeline.Evaluate(ctx, &question, text, jobTitle)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false

	if m.phase != interview.PhaseInterview {
		// Интервью успели завершить, пока шла оценка — ответ не засчитывается
		return nil, false, fmt.Errorf("сессия завершена во время оценки ответа")
	}
	if err != nil {
		// Состояние не меняется: пользователь повторяет сабмит
		return nil, false, err
	}

	cost := pipeline.EstimateTokenCost(question.Text, text)
	response := interview.Response{
		QuestionIndex:      question.Index,
		QuestionText:       question.Text,
		AnswerText:         text,
		Score:              score,
		Feedback:           feedback,
		EstimatedTokenCost: cost,
	}
	m.session.Responses = append(m.session.Responses, response)
	m.ledger.Consume(cost)
	m.metrics.IncrementAnswersEvaluated()
	m.metrics.AddTokensConsumed(cost)

	if m.questionIndex+1 == len(m.questions) {
		m.finalizeLocked(ctx, interview.StatusCompleted)
		return &response, true, nil
	}

	// Адаптивный уровень подбирает сложность следующего вопроса по оценке
	if m.level.Adaptive {
		pipeline.ReorderForScore(m.questions, m.questionIndex+1, &response, question.Difficulty, m.pipeline.Strategy())
	}

	m.questionIndex++
	m.metrics.IncrementQuestionsAsked()

	if m.cfg.Interview.AutoNarrate {
		m.narrateAsyncLocked(ctx, m.questions[m.questionIndex].Text)
	}

	return &response, false, nil
}

// EndInterview досрочно завершает интервью после подтверждения пользователя.
// С накопленными ответами сессия финализируется с частичной оценкой и машина
// переходит к результатам; без ответов сессия помечается прерванной и машина
// возвращается в исходное состояние (вызывающая сторона уходит на "домой").
func (m *Machine) EndInterview(ctx context.Context, confirm bool) (*interview.ScoreSummary, error) {
	if !confirm {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != interview.PhaseInterview {
		return nil, fmt.Errorf("завершить можно только активное интервью")
	}

	if len(m.session.Responses) == 0 {
		m.session.Status = interview.StatusAborted
		now := time.Now()
		m.session.CompletedAt = &now
		m.metrics.IncrementSessionsAborted()
		m.persistLocked(ctx)
		m.exitInterviewLocked()
		m.session = nil
		m.phase = interview.PhaseLoading
		return nil, nil
	}

	m.finalizeLocked(ctx, interview.StatusCompleted)
	return m.session.Summary, nil
}

// Summary возвращает итоговую оценку (nil до фазы результатов)
func (m *Machine) Summary() *interview.ScoreSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	return m.session.Summary
}

// Retake отбрасывает завершенную сессию и возвращает машину к выбору уровня.
// Медиа уже освобождены при выходе из интервью — повторный релиз это no-op.
func (m *Machine) Retake(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != interview.PhaseResults {
		return fmt.Errorf("повторное интервью доступно только с экрана результатов")
	}

	if m.recordID != "" {
		if err := m.store.DeleteInterviewRecord(ctx, m.recordID); err != nil {
			log.Printf("⚠️ Не удалось удалить запись интервью: %v", err)
		}
	}

	m.media.ReleaseAll()
	m.session = nil
	m.questions = nil
	m.questionIndex = 0
	m.recordID = ""
	m.persistErr = nil
	m.phase = interview.PhaseLevelSelection
	return nil
}

// GoHome освобождает ресурсы и выводит машину из сессии
func (m *Machine) GoHome() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.exitInterviewLocked()
	m.session = nil
	m.questions = nil
	m.questionIndex = 0
	m.recordID = ""
	m.phase = interview.PhaseLoading
}

// Close — гарантия очистки при любом демонтаже (ошибка, уход с экрана).
// Идемпотентна, безопасна в любой фазе.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exitInterviewLocked()
}

// PersistenceWarning возвращает ошибку последней best-effort записи в
// хранилище: результат показывается и при недоступной персистентности
func (m *Machine) PersistenceWarning() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistErr
}

// finalizeLocked завершает сессию: итоговая оценка, запись, освобождение медиа
func (m *Machine) finalizeLocked(ctx context.Context, status interview.Status) {
	now := time.Now()
	m.session.Status = status
	m.session.CompletedAt = &now
	m.session.Summary = scoring.Summarize(m.session.Responses)
	m.session.Phase = interview.PhaseResults
	m.metrics.IncrementSessionsCompleted()

	m.persistLocked(ctx)
	m.exitInterviewLocked()
	m.phase = interview.PhaseResults
}

// exitInterviewLocked — общий хвост всех путей выхода из фазы интервью:
// поздние колбэки обесцениваются, озвучка отменяется, медиа освобождаются
func (m *Machine) exitInterviewLocked() {
	m.epoch++
	m.inFlight = false
	m.speech.CancelNarration()
	m.media.ReleaseAll()
}

// persistLocked выполняет best-effort записи в хранилище.
// Сбой логируется и запоминается, но показ локального результата не блокирует.
func (m *Machine) persistLocked(ctx context.Context) {
	if m.recordID == "" {
		return
	}

	// Статус записи в хранилище всегда completed: прерванная сессия
	// сохраняется завершенной без оценки (score остается NULL)
	var score *int
	if summary := scoring.Summarize(m.session.Responses); summary != nil {
		v := summary.FinalScore
		score = &v
	}

	responses := make([]storage.RecordResponse, 0, len(m.session.Responses))
	for _, r := range m.session.Responses {
		rec := storage.RecordResponse{
			QuestionText: r.QuestionText,
			AnswerText:   r.AnswerText,
			Score:        r.Score,
			Feedback:     r.Feedback,
		}
		if r.QuestionIndex >= 0 && r.QuestionIndex < len(m.questions) {
			q := m.findQuestion(r.QuestionIndex)
			if q != nil {
				rec.ExpectedAnswer = q.ExpectedAnswer
				rec.QuestionType = string(q.Type)
			}
		}
		responses = append(responses, rec)
	}

	tokensUsed := m.session.TokensUsed()
	recordID := m.recordID
	completedAt := m.session.CompletedAt
	completedDelta := 0
	if m.session.Status == interview.StatusCompleted {
		completedDelta = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return m.store.UpdateInterviewRecord(gctx, recordID, interview.StatusCompleted, score, tokensUsed, completedAt, responses)
	})
	g.Go(func() error {
		return m.store.UpdateProfileUsage(gctx, m.userID, m.planID, tokensUsed, completedDelta)
	})
	if err := g.Wait(); err != nil {
		log.Printf("⚠️ Ошибка сохранения результатов интервью: %v", err)
		m.persistErr = err
	}
}

// findQuestion находит вопрос по исходному индексу генерации
func (m *Machine) findQuestion(index int) *interview.Question {
	for i := range m.questions {
		if m.questions[i].Index == index {
			return &m.questions[i]
		}
	}
	return nil
}

// narrateAsyncLocked запускает авто-озвучку вопроса.
// Колбэк защищен эпохой: если к моменту завершения синтеза интервью уже
// покинуто, результат тихо отбрасывается. Ошибки авто-озвучки не фатальны.
func (m *Machine) narrateAsyncLocked(ctx context.Context, text string) {
	epoch := m.epoch
	voice := m.voice.Voice

	go func() {
		handle, err := m.speech.Narrate(ctx, text, voice)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("🔇 Авто-озвучка вопроса не удалась: %v", err)
			}
			return
		}

		m.mu.Lock()
		stale := m.epoch != epoch
		m.mu.Unlock()
		if stale {
			// Озвучка пришла после выхода из интервью
			m.speech.CancelNarration()
			return
		}

		m.metrics.IncrementNarrationsPlayed()
		_ = handle
	}()
}
