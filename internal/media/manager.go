package media

import (
	"context"
	"fmt"
	"log"
	"sync"

	"interview-trainer/internal/interview"
)

// Manager — единоличный владелец камеры, активной записи и активного
// воспроизведения. Гарантирует: не больше одной записи и одного
// воспроизведения одновременно; идемпотентное полное освобождение.
type Manager struct {
	devices Devices

	mu         sync.Mutex
	camera     *Handle
	cameraStop func() error
	recorder   *Handle
	playCancel context.CancelFunc
	playback   *Handle
}

func NewManager(devices Devices) *Manager {
	return &Manager{devices: devices}
}

// AcquireCamera включает камеру на всё время фазы интервью.
// Повторный вызов при активной камере возвращает существующий хэндл.
// Отказ камеры не фатален: сессия продолжается без видео.
func (m *Manager) AcquireCamera(ctx context.Context) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.devices.Camera == nil {
		return nil, &interview.DeviceError{Device: "camera", Reason: interview.DeviceNotFound, Err: fmt.Errorf("камера не сконфигурирована")}
	}

	if m.camera != nil && m.camera.State() == StateActive {
		return m.camera, nil
	}

	stop, err := m.devices.Camera.Open(ctx)
	if err != nil {
		return nil, err
	}

	m.camera = newHandle(KindCamera)
	m.cameraStop = stop
	return m.camera, nil
}

// AcquireMicrophoneAndRecord начинает запись голосового ответа.
// Активна максимум одна запись: новая неявно останавливает предыдущую.
func (m *Manager) AcquireMicrophoneAndRecord(ctx context.Context) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.devices.Recorder == nil {
		return nil, &interview.DeviceError{Device: "microphone", Reason: interview.DeviceNotFound, Err: fmt.Errorf("микрофон не сконфигурирован")}
	}

	if m.recorder != nil && m.recorder.State() == StateActive {
		if _, err := m.devices.Recorder.Stop(); err != nil {
			log.Printf("⚠️ Ошибка остановки предыдущей записи: %v", err)
		}
		m.recorder.markStopped(nil)
		m.recorder = nil
	}

	if err := m.devices.Recorder.Start(ctx); err != nil {
		return nil, err
	}

	m.recorder = newHandle(KindRecorder)
	return m.recorder, nil
}

// StopRecording останавливает запись и возвращает готовый аудио-блоб
func (m *Manager) StopRecording(h *Handle) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h == nil || m.recorder == nil || m.recorder.ID != h.ID {
		return nil, fmt.Errorf("запись уже остановлена")
	}

	blob, err := m.devices.Recorder.Stop()
	m.recorder.markStopped(err)
	m.recorder = nil
	if err != nil {
		return nil, fmt.Errorf("ошибка остановки записи: %w", err)
	}

	return blob, nil
}

// RecordingFormat возвращает формат аудио активного рекордера
func (m *Manager) RecordingFormat() string {
	if m.devices.Recorder == nil {
		return "wav"
	}
	return m.devices.Recorder.Format()
}

// PlayAudio запускает воспроизведение озвучки.
// Семантика stop-and-replace: активное воспроизведение останавливается до
// старта нового, очередь не ведется. Завершение и ошибка — через хэндл.
func (m *Manager) PlayAudio(ctx context.Context, audio []byte) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.devices.Player == nil {
		return nil, &interview.PlaybackError{Err: fmt.Errorf("устройство воспроизведения не сконфигурировано")}
	}

	m.stopPlaybackLocked()

	playCtx, cancel := context.WithCancel(ctx)
	h := newHandle(KindPlayback)
	m.playback = h
	m.playCancel = cancel

	go func() {
		err := m.devices.Player.Play(playCtx, audio)
		cancel()
		if err != nil && playCtx.Err() == nil {
			h.markStopped(&interview.PlaybackError{Err: err})
			return
		}
		h.markStopped(nil)
	}()

	return h, nil
}

// StopPlayback останавливает активное воспроизведение, если оно есть
func (m *Manager) StopPlayback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopPlaybackLocked()
}

func (m *Manager) stopPlaybackLocked() {
	if m.playback == nil {
		return
	}
	if m.playCancel != nil {
		m.playCancel()
	}
	m.playback.markStopped(nil)
	m.playback = nil
	m.playCancel = nil
}

// ActivePlayback возвращает хэндл текущего воспроизведения (nil, если его нет)
func (m *Manager) ActivePlayback() *Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playback
}

// ActiveRecorder возвращает хэндл текущей записи (nil, если её нет)
func (m *Manager) ActiveRecorder() *Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recorder
}

// ActiveCamera возвращает хэндл камеры (nil, если она не захвачена)
func (m *Manager) ActiveCamera() *Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.camera != nil && m.camera.State() == StateActive {
		return m.camera
	}
	return nil
}

// ReleaseAll останавливает все ресурсы и очищает внутренние ссылки.
// Идемпотентна: безопасна при повторном и конкурентном вызове, поэтому
// может дергаться сразу несколькими путями выхода из фазы интервью.
func (m *Manager) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopPlaybackLocked()

	if m.recorder != nil {
		if _, err := m.devices.Recorder.Stop(); err != nil {
			log.Printf("⚠️ Ошибка остановки записи при освобождении: %v", err)
		}
		m.recorder.markStopped(nil)
		m.recorder = nil
	}

	if m.camera != nil {
		if m.cameraStop != nil {
			if err := m.cameraStop(); err != nil {
				log.Printf("⚠️ Ошибка остановки камеры: %v", err)
			}
		}
		m.camera.markStopped(nil)
		m.camera = nil
		m.cameraStop = nil
	}
}
