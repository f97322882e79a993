package session

import (
	"context"
	"fmt"

	"interview-trainer/internal/interview"
	"interview-trainer/internal/media"
)

// Голосовой ответ: запись с микрофона, расшифровка, затем обычный SubmitAnswer
// с полученным текстом. Ошибки расшифровки всегда показываются пользователю:
// "речь не распознана" отличимо от сбоя сервиса.

// StartVoiceAnswer начинает запись голосового ответа.
// Запись несовместима с озвучкой, поэтому озвучка сначала останавливается.
// Отказ микрофона фатален для голосового пути (текстовый путь остается).
func (m *Machine) StartVoiceAnswer(ctx context.Context) (*media.Handle, error) {
	m.mu.Lock()
	if m.phase != interview.PhaseInterview {
		m.mu.Unlock()
		return nil, fmt.Errorf("запись ответа доступна только в фазе интервью")
	}
	m.mu.Unlock()

	m.speech.CancelNarration()

	handle, err := m.media.AcquireMicrophoneAndRecord(ctx)
	if err != nil {
		return nil, err
	}
	return handle, nil
}

// FinishVoiceAnswer останавливает запись и расшифровывает её в текст.
// Текст возвращается вызывающей стороне для подтверждения и сабмита.
func (m *Machine) FinishVoiceAnswer(ctx context.Context, handle *media.Handle) (string, error) {
	m.mu.Lock()
	if m.phase != interview.PhaseInterview {
		m.mu.Unlock()
		return "", fmt.Errorf("запись ответа доступна только в фазе интервью")
	}
	language := m.session.Language
	m.mu.Unlock()

	blob, err := m.media.StopRecording(handle)
	if err != nil {
		return "", err
	}

	text, err := m.speech.Transcribe(ctx, blob, m.media.RecordingFormat(), language)
	if err != nil {
		return "", err
	}

	m.metrics.IncrementTranscriptionsDone()
	return text, nil
}

// RepeatQuestion озвучивает текущий вопрос по запросу пользователя.
// В отличие от авто-озвучки, ошибки ручного воспроизведения показываются.
func (m *Machine) RepeatQuestion(ctx context.Context) error {
	m.mu.Lock()
	if m.phase != interview.PhaseInterview {
		m.mu.Unlock()
		return fmt.Errorf("озвучка доступна только в фазе интервью")
	}
	text := m.questions[m.questionIndex].Text
	voice := m.voice.Voice
	m.mu.Unlock()

	handle, err := m.speech.Narrate(ctx, text, voice)
	if err != nil {
		return err
	}

	// Ручное воспроизведение дожидается конца, чтобы отдать и ошибки плеера
	select {
	case <-handle.Done():
	case <-ctx.Done():
		m.speech.CancelNarration()
		return ctx.Err()
	}

	if err := handle.Err(); err != nil {
		return err
	}

	m.metrics.IncrementNarrationsPlayed()
	return nil
}
