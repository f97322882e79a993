package speech

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-trainer/internal/interview"
	"interview-trainer/internal/media"
)

type fakeSynth struct {
	mu   sync.Mutex
	ctxs []context.Context
	err  error
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, _ string) ([]byte, error) {
	f.mu.Lock()
	f.ctxs = append(f.ctxs, ctx)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3:" + text), nil
}

type fakeSTT struct {
	text string
	err  error
}

func (f *fakeSTT) Transcribe(_ context.Context, _ []byte, _, _ string) (string, error) {
	return f.text, f.err
}

type fakePlayer struct {
	mu     sync.Mutex
	played []string
	stops  int
}

func (f *fakePlayer) PlayAudio(_ context.Context, audio []byte) (*media.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, string(audio))
	return media.CompletedHandle(media.KindPlayback, nil), nil
}

func (f *fakePlayer) StopPlayback() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakePlayer) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

func TestNarrate(t *testing.T) {
	synth := &fakeSynth{}
	player := &fakePlayer{}
	b := NewBridge(synth, &fakeSTT{}, player)

	h, err := b.Narrate(context.Background(), "Первый вопрос", "nova")
	require.NoError(t, err)
	require.NotNil(t, h)

	player.mu.Lock()
	assert.Equal(t, []string{"mp3:Первый вопрос"}, player.played)
	player.mu.Unlock()
}

func TestNarrateReplacesPrevious(t *testing.T) {
	synth := &fakeSynth{}
	b := NewBridge(synth, &fakeSTT{}, &fakePlayer{})

	_, err := b.Narrate(context.Background(), "Первый", "nova")
	require.NoError(t, err)

	_, err = b.Narrate(context.Background(), "Второй", "nova")
	require.NoError(t, err)

	// Контекст первой озвучки отменен заменой
	synth.mu.Lock()
	require.Len(t, synth.ctxs, 2)
	assert.Error(t, synth.ctxs[0].Err())
	assert.NoError(t, synth.ctxs[1].Err())
	synth.mu.Unlock()
}

func TestNarrateSynthesisError(t *testing.T) {
	synth := &fakeSynth{err: errors.New("сервис синтеза недоступен")}
	player := &fakePlayer{}
	b := NewBridge(synth, &fakeSTT{}, player)

	_, err := b.Narrate(context.Background(), "Вопрос", "nova")
	require.Error(t, err)

	player.mu.Lock()
	assert.Empty(t, player.played)
	player.mu.Unlock()
}

func TestNarrateStaleAfterCancel(t *testing.T) {
	player := &fakePlayer{}

	// Синтез, во время которого стартует отмена
	b := NewBridge(nil, &fakeSTT{}, player)
	b.synth = synthFunc(func(ctx context.Context, text, voice string) ([]byte, error) {
		b.CancelNarration()
		return []byte("audio"), nil
	})

	_, err := b.Narrate(context.Background(), "Вопрос", "nova")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	// Устаревшая озвучка не дошла до воспроизведения
	player.mu.Lock()
	assert.Empty(t, player.played)
	player.mu.Unlock()
}

type synthFunc func(ctx context.Context, text, voice string) ([]byte, error)

func (f synthFunc) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	return f(ctx, text, voice)
}

func TestCancelNarrationStopsPlayback(t *testing.T) {
	player := &fakePlayer{}
	b := NewBridge(&fakeSynth{}, &fakeSTT{}, player)

	_, err := b.Narrate(context.Background(), "Вопрос", "nova")
	require.NoError(t, err)

	b.CancelNarration()
	assert.Equal(t, 1, player.stopCount())

	// Повторная отмена безопасна
	b.CancelNarration()
	assert.Equal(t, 2, player.stopCount())
}

func TestTranscribe(t *testing.T) {
	player := &fakePlayer{}
	b := NewBridge(&fakeSynth{}, &fakeSTT{text: "Мой ответ"}, player)

	text, err := b.Transcribe(context.Background(), []byte("wav-data"), "wav", "ru")
	require.NoError(t, err)
	assert.Equal(t, "Мой ответ", text)

	// Расшифровка глушит озвучку: запись и воспроизведение взаимоисключающие
	assert.Equal(t, 1, player.stopCount())
}

func TestTranscribeEmptyBlob(t *testing.T) {
	b := NewBridge(&fakeSynth{}, &fakeSTT{text: "не должно дойти"}, &fakePlayer{})

	_, err := b.Transcribe(context.Background(), nil, "wav", "ru")
	require.ErrorIs(t, err, interview.ErrEmptyTranscript)
}

func TestTranscribeEmptyText(t *testing.T) {
	b := NewBridge(&fakeSynth{}, &fakeSTT{text: ""}, &fakePlayer{})

	_, err := b.Transcribe(context.Background(), []byte("wav-data"), "wav", "ru")
	require.ErrorIs(t, err, interview.ErrEmptyTranscript)
}

func TestTranscribeServiceError(t *testing.T) {
	sttErr := errors.New("распознавание недоступно")
	b := NewBridge(&fakeSynth{}, &fakeSTT{err: sttErr}, &fakePlayer{})

	_, err := b.Transcribe(context.Background(), []byte("wav-data"), "wav", "ru")
	require.ErrorIs(t, err, sttErr)
	assert.False(t, strings.Contains(err.Error(), "пустая"))
}
