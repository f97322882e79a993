package media

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-trainer/internal/interview"
)

type fakeCamera struct {
	mu      sync.Mutex
	opens   int
	stops   int
	openErr error
}

func (f *fakeCamera) Open(_ context.Context) (func() error, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opens++
	return func() error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stops++
		return nil
	}, nil
}

func (f *fakeCamera) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

type fakeRecorder struct {
	mu     sync.Mutex
	starts int
	stops  int
	blob   []byte
}

func (f *fakeRecorder) Start(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	return nil
}

func (f *fakeRecorder) Stop() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return f.blob, nil
}

func (f *fakeRecorder) Format() string { return "wav" }

func (f *fakeRecorder) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

// fakePlayer блокируется до отмены контекста, имитируя длинную озвучку
type fakePlayer struct {
	mu     sync.Mutex
	plays  int
	played [][]byte
}

func (f *fakePlayer) Play(ctx context.Context, audio []byte) error {
	f.mu.Lock()
	f.plays++
	f.played = append(f.played, audio)
	f.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func testManager() (*Manager, *fakeCamera, *fakeRecorder, *fakePlayer) {
	camera := &fakeCamera{}
	recorder := &fakeRecorder{blob: []byte("audio")}
	player := &fakePlayer{}
	m := NewManager(Devices{Camera: camera, Recorder: recorder, Player: player})
	return m, camera, recorder, player
}

func TestAcquireCameraIdempotent(t *testing.T) {
	m, camera, _, _ := testManager()
	ctx := context.Background()

	h1, err := m.AcquireCamera(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateActive, h1.State())

	h2, err := m.AcquireCamera(ctx)
	require.NoError(t, err)
	assert.Same(t, h1, h2)

	camera.mu.Lock()
	assert.Equal(t, 1, camera.opens)
	camera.mu.Unlock()
}

func TestAcquireCameraUnconfigured(t *testing.T) {
	m := NewManager(Devices{})

	_, err := m.AcquireCamera(context.Background())
	require.Error(t, err)

	var de *interview.DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "camera", de.Device)
	assert.Equal(t, interview.DeviceNotFound, de.Reason)
}

func TestAcquireCameraOpenError(t *testing.T) {
	camera := &fakeCamera{openErr: errors.New("устройство занято")}
	m := NewManager(Devices{Camera: camera})

	_, err := m.AcquireCamera(context.Background())
	require.Error(t, err)
	assert.Nil(t, m.ActiveCamera())
}

func TestRecordAndStop(t *testing.T) {
	m, _, _, _ := testManager()
	ctx := context.Background()

	h, err := m.AcquireMicrophoneAndRecord(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateActive, h.State())
	assert.Same(t, h, m.ActiveRecorder())

	blob, err := m.StopRecording(h)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), blob)
	assert.Equal(t, StateStopped, h.State())
	assert.Nil(t, m.ActiveRecorder())
}

func TestStopRecordingTwice(t *testing.T) {
	m, _, _, _ := testManager()
	ctx := context.Background()

	h, err := m.AcquireMicrophoneAndRecord(ctx)
	require.NoError(t, err)

	_, err = m.StopRecording(h)
	require.NoError(t, err)

	_, err = m.StopRecording(h)
	require.Error(t, err)
}

func TestNewRecordingReplacesPrevious(t *testing.T) {
	m, _, recorder, _ := testManager()
	ctx := context.Background()

	h1, err := m.AcquireMicrophoneAndRecord(ctx)
	require.NoError(t, err)

	h2, err := m.AcquireMicrophoneAndRecord(ctx)
	require.NoError(t, err)

	assert.Equal(t, StateStopped, h1.State())
	assert.Equal(t, StateActive, h2.State())
	assert.Equal(t, 1, recorder.stopCount())

	// Старый хэндл больше не принимается
	_, err = m.StopRecording(h1)
	require.Error(t, err)
}

func TestPlayAudioStopAndReplace(t *testing.T) {
	m, _, _, player := testManager()
	ctx := context.Background()

	h1, err := m.PlayAudio(ctx, []byte("первый"))
	require.NoError(t, err)

	h2, err := m.PlayAudio(ctx, []byte("второй"))
	require.NoError(t, err)

	// Очереди нет: первый остановлен до старта второго
	assert.Equal(t, StateStopped, h1.State())
	assert.Equal(t, StateActive, h2.State())
	assert.Same(t, h2, m.ActivePlayback())

	select {
	case <-h1.Done():
	case <-time.After(time.Second):
		t.Fatal("первый хэндл не завершился")
	}
	assert.NoError(t, h1.Err())

	player.mu.Lock()
	assert.Equal(t, [][]byte{[]byte("первый"), []byte("второй")}, player.played)
	player.mu.Unlock()
}

func TestStopPlayback(t *testing.T) {
	m, _, _, _ := testManager()

	h, err := m.PlayAudio(context.Background(), []byte("аудио"))
	require.NoError(t, err)

	m.StopPlayback()
	assert.Equal(t, StateStopped, h.State())
	assert.Nil(t, m.ActivePlayback())

	// Отмена не считается ошибкой воспроизведения
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("хэндл не завершился после остановки")
	}
	assert.NoError(t, h.Err())
}

func TestPlaybackFailureSurfacesThroughHandle(t *testing.T) {
	player := &failingPlayer{err: errors.New("кодек не поддерживается")}
	m := NewManager(Devices{Player: player})

	h, err := m.PlayAudio(context.Background(), []byte("аудио"))
	require.NoError(t, err)

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("хэндл не завершился")
	}

	var pe *interview.PlaybackError
	require.ErrorAs(t, h.Err(), &pe)
}

type failingPlayer struct{ err error }

func (f *failingPlayer) Play(_ context.Context, _ []byte) error { return f.err }

func TestReleaseAllIdempotent(t *testing.T) {
	m, camera, recorder, _ := testManager()
	ctx := context.Background()

	ch, err := m.AcquireCamera(ctx)
	require.NoError(t, err)
	rh, err := m.AcquireMicrophoneAndRecord(ctx)
	require.NoError(t, err)
	ph, err := m.PlayAudio(ctx, []byte("аудио"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		m.ReleaseAll()
	}

	assert.Equal(t, StateStopped, ch.State())
	assert.Equal(t, StateStopped, rh.State())
	assert.Equal(t, StateStopped, ph.State())
	assert.Nil(t, m.ActiveCamera())
	assert.Nil(t, m.ActiveRecorder())
	assert.Nil(t, m.ActivePlayback())

	// Железо остановлено ровно один раз
	assert.Equal(t, 1, camera.stopCount())
	assert.Equal(t, 1, recorder.stopCount())
}

func TestReleaseAllOnEmptyManager(t *testing.T) {
	m := NewManager(Devices{})
	assert.NotPanics(t, func() {
		m.ReleaseAll()
		m.ReleaseAll()
	})
}

func TestAcquireAfterRelease(t *testing.T) {
	m, camera, _, _ := testManager()
	ctx := context.Background()

	_, err := m.AcquireCamera(ctx)
	require.NoError(t, err)
	m.ReleaseAll()

	h, err := m.AcquireCamera(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateActive, h.State())

	camera.mu.Lock()
	assert.Equal(t, 2, camera.opens)
	camera.mu.Unlock()
}

func TestCompletedHandle(t *testing.T) {
	h := CompletedHandle(KindPlayback, nil)
	assert.Equal(t, StateStopped, h.State())
	select {
	case <-h.Done():
	default:
		t.Fatal("done должен быть закрыт")
	}

	failed := CompletedHandle(KindPlayback, errors.New("сбой"))
	assert.Error(t, failed.Err())
}
