package speech

import (
	"context"
	"sync"

	"interview-trainer/internal/interview"
	"interview-trainer/internal/media"
)

// Synthesizer — контракт синтеза речи
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Transcriber — контракт расшифровки записанного ответа
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, format, language string) (string, error)
}

// Player — часть медиа-менеджера, нужная мосту речи
type Player interface {
	PlayAudio(ctx context.Context, audio []byte) (*media.Handle, error)
	StopPlayback()
}

// Bridge связывает синтез и распознавание речи с воспроизведением.
// Новая озвучка отменяет и замещает незавершенную пару синтез+воспроизведение,
// очереди нет. Запись голосового ответа несовместима с озвучкой.
type Bridge struct {
	synth  Synthesizer
	stt    Transcriber
	player Player

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewBridge(synth Synthesizer, stt Transcriber, player Player) *Bridge {
	return &Bridge{
		synth:  synth,
		stt:    stt,
		player: player,
	}
}

// Narrate синтезирует и начинает воспроизведение озвучки вопроса.
// Возвращает хэндл воспроизведения; ожидание завершения — дело вызывающего.
func (b *Bridge) Narrate(ctx context.Context, text, voice string) (*media.Handle, error) {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	nctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()

	audio, err := b.synth.Synthesize(nctx, text, voice)
	if err != nil {
		return nil, err
	}

	// Пока шел синтез, могла стартовать новая озвучка — тогда эта устарела
	if nctx.Err() != nil {
		return nil, nctx.Err()
	}

	return b.player.PlayAudio(nctx, audio)
}

// CancelNarration отменяет незавершенный синтез и останавливает воспроизведение
func (b *Bridge) CancelNarration() {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.mu.Unlock()

	b.player.StopPlayback()
}

// Transcribe расшифровывает голосовой ответ.
// Перед расшифровкой любая озвучка останавливается: запись и воспроизведение
// взаимоисключающие. Пустая расшифровка отдаётся отдельной ошибкой, чтобы
// пользователь видел разницу между "речь не распознана" и сбоем сервиса.
func (b *Bridge) Transcribe(ctx context.Context, audio []byte, format, language string) (string, error) {
	b.CancelNarration()

	if len(audio) == 0 {
		return "", interview.ErrEmptyTranscript
	}

	text, err := b.stt.Transcribe(ctx, audio, format, language)
	if err != nil {
		return "", err
	}

	if text == "" {
		return "", interview.ErrEmptyTranscript
	}

	return text, nil
}
