package playback

import (
	"context"
	"sync"
	"time"
)

// MockBackend is a test double that records opens and lets a test decide
// when each one completes.
type MockBackend struct {
	mu       sync.Mutex
	Duration time.Duration
	Errs     map[string]error
	SeekErr  error
	gates    map[string]chan struct{}
	opened   []string
	streams  []*MockStream
}

func NewMockBackend() *MockBackend {
	return &MockBackend{
		Duration: 3 * time.Minute,
		Errs:     map[string]error{},
		gates:    map[string]chan struct{}{},
	}
}

// Hold makes Open(src) block until Release(src) or context cancellation.
func (m *MockBackend) Hold(src string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gates[src] = make(chan struct{})
}

// Release unblocks a held Open.
func (m *MockBackend) Release(src string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.gates[src]; ok {
		close(ch)
		delete(m.gates, src)
	}
}

func (m *MockBackend) Open(ctx context.Context, src string) (Stream, error) {
	m.mu.Lock()
	m.opened = append(m.opened, src)
	gate := m.gates[src]
	err := m.Errs[src]
	dur := m.Duration
	seekErr := m.SeekErr
	m.mu.Unlock()

	if gate != nil {
		// a held load ignores cancellation so stale completion can be observed
		<-gate
	}
	if err != nil {
		return nil, err
	}

	s := &MockStream{Src: src, duration: dur, volume: 1, seekErr: seekErr}
	m.mu.Lock()
	m.streams = append(m.streams, s)
	m.mu.Unlock()
	return s, nil
}

// Opened lists every source passed to Open in order.
func (m *MockBackend) Opened() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.opened...)
}

// Streams returns every stream created so far.
func (m *MockBackend) Streams() []*MockStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockStream(nil), m.streams...)
}

// Active counts streams that are not closed.
func (m *MockBackend) Active() int {
	n := 0
	for _, s := range m.Streams() {
		if !s.Closed() {
			n++
		}
	}
	return n
}

// Last returns the most recently created stream, or nil.
func (m *MockBackend) Last() *MockStream {
	streams := m.Streams()
	if len(streams) == 0 {
		return nil
	}
	return streams[len(streams)-1]
}

// MockStream is an in-memory [Stream].
type MockStream struct {
	Src string

	mu       sync.Mutex
	playing  bool
	closed   bool
	ended    bool
	position time.Duration
	duration time.Duration
	volume   float64
	seekErr  error
	onEnd    func()
}

// Play resumes, rewinding to 0 first when the stream has ended.
func (s *MockStream) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		s.ended = false
		s.position = 0
	}
	s.playing = true
	return nil
}

func (s *MockStream) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	return nil
}

func (s *MockStream) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *MockStream) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

func (s *MockStream) Seek(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seekErr != nil {
		return s.seekErr
	}
	s.position = pos
	s.ended = s.duration > 0 && pos >= s.duration
	return nil
}

func (s *MockStream) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
}

func (s *MockStream) OnEnd(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnd = fn
}

func (s *MockStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.playing = false
	return nil
}

// End simulates natural end of media and runs the end callback synchronously.
func (s *MockStream) End() {
	s.mu.Lock()
	fn := s.onEnd
	closed := s.closed
	s.position = s.duration
	s.playing = false
	s.ended = true
	s.mu.Unlock()

	if fn != nil && !closed {
		fn()
	}
}

func (s *MockStream) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *MockStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *MockStream) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// SetDuration changes the reported length, 0 meaning unknown.
func (s *MockStream) SetDuration(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duration = d
}
