package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"interview-trainer/internal/interview"
)

// Системная реализация устройств поверх консольных утилит.
// Ядру всё равно, чем именно играется и пишется звук: сюда можно подставить
// любую другую реализацию интерфейсов из devices.go.

// SystemDevices собирает устройства по конфигурации окружения
func SystemDevices(playerCommand, recorderCommand string, enableCamera bool) Devices {
	d := Devices{
		Player:   &execPlayer{command: playerCommand},
		Recorder: &execRecorder{command: recorderCommand},
	}
	if enableCamera {
		d.Camera = &execCamera{devicePath: "/dev/video0"}
	}
	return d
}

// execPlayer воспроизводит аудио внешним плеером
type execPlayer struct {
	command string
}

var playerCandidates = [][]string{
	{"mpg123", "-q"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"afplay"},
	{"mpv", "--no-video", "--really-quiet"},
}

func (p *execPlayer) Play(ctx context.Context, audio []byte) error {
	tmp, err := os.CreateTemp("", "narration-*.mp3")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи аудио: %w", err)
	}
	tmp.Close()

	args, err := resolveCommand(p.command, playerCandidates)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], tmp.Name())...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("плеер завершился с ошибкой: %w", err)
	}
	return nil
}

// execRecorder пишет звук с микрофона внешней утилитой в wav файл
type execRecorder struct {
	command string

	cmd  *exec.Cmd
	path string
}

var recorderCandidates = [][]string{
	{"arecord", "-q", "-f", "cd"},
	{"sox", "-d", "-q"},
	{"rec", "-q"},
}

func (r *execRecorder) Start(ctx context.Context) error {
	if r.cmd != nil {
		return &interview.DeviceError{Device: "microphone", Reason: interview.DeviceInUse, Err: fmt.Errorf("запись уже идет")}
	}

	args, err := resolveCommand(r.command, recorderCandidates)
	if err != nil {
		return &interview.DeviceError{Device: "microphone", Reason: interview.DeviceNotFound, Err: err}
	}

	r.path = filepath.Join(os.TempDir(), fmt.Sprintf("answer-%d.wav", time.Now().UnixNano()))
	cmd := exec.CommandContext(ctx, args[0], append(args[1:], r.path)...)
	if err := cmd.Start(); err != nil {
		return classifyDeviceErr("microphone", err)
	}

	r.cmd = cmd
	return nil
}

func (r *execRecorder) Stop() ([]byte, error) {
	if r.cmd == nil {
		return nil, fmt.Errorf("запись не запущена")
	}

	// Мягкая остановка, чтобы утилита дописала wav-заголовок
	_ = r.cmd.Process.Signal(os.Interrupt)
	done := make(chan struct{})
	go func() {
		_, _ = r.cmd.Process.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		_ = r.cmd.Process.Kill()
	}
	r.cmd = nil

	blob, err := os.ReadFile(r.path)
	os.Remove(r.path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения записи: %w", err)
	}
	return blob, nil
}

func (r *execRecorder) Format() string { return "wav" }

// execCamera пишет видео с камеры через ffmpeg на время интервью
type execCamera struct {
	devicePath string

	cmd  *exec.Cmd
	path string
}

func (c *execCamera) Open(ctx context.Context) (func() error, error) {
	if _, err := os.Stat(c.devicePath); err != nil {
		return nil, &interview.DeviceError{Device: "camera", Reason: interview.DeviceNotFound, Err: err}
	}

	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, &interview.DeviceError{Device: "camera", Reason: interview.DeviceNotFound, Err: err}
	}

	c.path = filepath.Join(os.TempDir(), fmt.Sprintf("interview-video-%d.mkv", time.Now().UnixNano()))
	cmd := exec.CommandContext(ctx, ffmpeg,
		"-loglevel", "quiet",
		"-f", "v4l2", "-i", c.devicePath,
		c.path)
	if err := cmd.Start(); err != nil {
		return nil, classifyDeviceErr("camera", err)
	}
	c.cmd = cmd

	stop := func() error {
		if c.cmd == nil {
			return nil
		}
		_ = c.cmd.Process.Signal(os.Interrupt)
		_, _ = c.cmd.Process.Wait()
		c.cmd = nil
		return nil
	}
	return stop, nil
}

// resolveCommand выбирает команду: заданную явно или первую доступную в PATH
func resolveCommand(configured string, candidates [][]string) ([]string, error) {
	if configured != "" {
		return strings.Fields(configured), nil
	}
	for _, cand := range candidates {
		if _, err := exec.LookPath(cand[0]); err == nil {
			return cand, nil
		}
	}
	return nil, fmt.Errorf("не найдена подходящая утилита в PATH")
}

// classifyDeviceErr приводит ошибку запуска к таксономии DeviceError
func classifyDeviceErr(device string, err error) error {
	msg := strings.ToLower(err.Error())
	reason := interview.DeviceNotFound
	switch {
	case strings.Contains(msg, "permission denied"):
		reason = interview.DevicePermissionDenied
	case strings.Contains(msg, "busy") || strings.Contains(msg, "in use"):
		reason = interview.DeviceInUse
	}
	return &interview.DeviceError{Device: device, Reason: reason, Err: err}
}
