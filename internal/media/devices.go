package media

import "context"

// Интерфейсы аппаратных устройств. Ядро не обращается к железу напрямую:
// любой доступ к камере, микрофону и воспроизведению идет через Manager.

// CameraDevice — захват видео с камеры
type CameraDevice interface {
	// Open начинает захват и возвращает функцию остановки
	Open(ctx context.Context) (stop func() error, err error)
}

// RecorderDevice — запись звука с микрофона
type RecorderDevice interface {
	// Start начинает запись во внутренний буфер
	Start(ctx context.Context) error
	// Stop останавливает железо и финализирует один аудио-блоб
	Stop() ([]byte, error)
	// Format возвращает формат записанного аудио (wav, mp3, ...)
	Format() string
}

// PlayerDevice — воспроизведение аудио
type PlayerDevice interface {
	// Play блокируется до конца воспроизведения или отмены контекста
	Play(ctx context.Context, audio []byte) error
}

// Devices объединяет устройства, с которыми работает Manager
type Devices struct {
	Camera   CameraDevice
	Recorder RecorderDevice
	Player   PlayerDevice
}
