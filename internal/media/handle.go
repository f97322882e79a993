package media

import (
	"sync"

	"github.com/lithammer/shortuuid/v4"
)

// HandleKind представляет вид медиа-ресурса
type HandleKind string

const (
	KindCamera   HandleKind = "camera"
	KindRecorder HandleKind = "microphone_recorder"
	KindPlayback HandleKind = "tts_playback"
)

// HandleState представляет состояние ресурса
type HandleState string

const (
	StateIdle    HandleState = "idle"
	StateActive  HandleState = "active"
	StateStopped HandleState = "stopped"
)

// Handle представляет один управляемый медиа-ресурс.
// Владеет хэндлами только Manager, напрямую они не создаются.
type Handle struct {
	ID   string
	Kind HandleKind

	mu    sync.Mutex
	state HandleState
	err   error
	done  chan struct{}
}

func newHandle(kind HandleKind) *Handle {
	return &Handle{
		ID:    shortuuid.New(),
		Kind:  kind,
		state: StateActive,
		done:  make(chan struct{}),
	}
}

// State возвращает текущее состояние ресурса
func (h *Handle) State() HandleState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Done закрывается, когда ресурс полностью остановлен
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err возвращает ошибку, с которой завершился ресурс (nil при штатной остановке)
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// CompletedHandle возвращает уже остановленный хэндл с заданной ошибкой.
// Нужен реализациям озвучки, у которых воспроизведение завершается синхронно.
func CompletedHandle(kind HandleKind, err error) *Handle {
	h := newHandle(kind)
	h.markStopped(err)
	return h
}

// markStopped переводит хэндл в stopped ровно один раз
func (h *Handle) markStopped(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateStopped {
		return
	}
	h.state = StateStopped
	h.err = err
	close(h.done)
}
