package interview

import (
	"errors"
	"fmt"
)

// DeviceErrorReason уточняет причину отказа устройства
type DeviceErrorReason string

const (
	DevicePermissionDenied DeviceErrorReason = "permission_denied"
	DeviceNotFound         DeviceErrorReason = "not_found"
	DeviceInUse            DeviceErrorReason = "in_use"
)

// DeviceError — ошибка камеры/микрофона/воспроизведения.
// Для камеры не фатальна (сессия продолжается без видео), для голосового ответа — фатальна.
type DeviceError struct {
	Device string
	Reason DeviceErrorReason
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("устройство %s недоступно (%s): %v", e.Device, e.Reason, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// NetworkError — недоступность AI-сервиса или хранилища
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("сетевая ошибка (%s): %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// QuotaError — лимит токенов исчерпан, новая фаза не может начаться
type QuotaError struct {
	Used  int
	Limit int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("лимит токенов исчерпан: использовано %d из %d", e.Used, e.Limit)
}

// ValidationError — некорректный ввод пользователя, переход фазы не выполняется
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("некорректное значение %s: %s", e.Field, e.Reason)
}

// PlaybackError — ошибка воспроизведения озвучки.
// При авто-озвучке логируется и глотается, при ручном воспроизведении — отдаётся пользователю.
type PlaybackError struct {
	Err error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("ошибка воспроизведения: %v", e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// Ошибки распознавания речи
var (
	// ErrEmptyTranscript — в записи не обнаружено речи
	ErrEmptyTranscript = errors.New("речь не распознана: в записи нет слов")
	// ErrUnsupportedFormat — сервис отклонил формат аудио
	ErrUnsupportedFormat = errors.New("формат аудио не поддерживается сервисом")
)

// IsQuota сообщает, является ли ошибка превышением квоты
func IsQuota(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}

// IsValidation сообщает, является ли ошибка ошибкой валидации ввода
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
