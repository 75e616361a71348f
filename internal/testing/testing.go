// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/shared"
)

// FlakyStore is an in-memory key/value store whose operations can be made to
// fail, for exercising storage error paths. It satisfies storage.Store.
type FlakyStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	GetErr   error
	SetErr   error
	SetCalls int
}

func NewFlakyStore() *FlakyStore {
	return &FlakyStore{data: make(map[string][]byte)}
}

// FailWrites makes every subsequent Set return err (or a storage failure when err is nil).
func (f *FlakyStore) FailWrites(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		err = shared.ErrStorage
	}
	f.SetErr = err
}

func (f *FlakyStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, shared.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (f *FlakyStore) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SetCalls++
	if f.SetErr != nil {
		return f.SetErr
	}
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func (f *FlakyStore) List(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.data))
	for k := range f.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FlakyStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *FlakyStore) Close() error { return nil }

// Raw returns the stored bytes for key without going through error injection.
func (f *FlakyStore) Raw(key string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.data[key]...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MustWriteFile writes content to path, failing the test on error.
func MustWriteFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

// FakeCatalog is an in-memory catalog service. It assigns increasing ids and
// lists newest first, like the REST server.
type FakeCatalog struct {
	mu        sync.Mutex
	tracks    []models.Track
	nextID    int
	ListErr   error
	CreateErr error
	DeleteErr error
	SeedWith  []models.CreateTrackRequest
	Creates   int
	Deletes   []string
}

// NewFakeCatalog returns a catalog holding tracks in the given (newest first) order.
func NewFakeCatalog(tracks ...models.Track) *FakeCatalog {
	f := &FakeCatalog{nextID: 1}
	for _, t := range tracks {
		f.tracks = append(f.tracks, t)
		if n, err := strconv.Atoi(t.ID); err == nil && n >= f.nextID {
			f.nextID = n + 1
		}
	}
	return f
}

func (f *FakeCatalog) List(_ context.Context) ([]models.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return slices.Clone(f.tracks), nil
}

func (f *FakeCatalog) Create(_ context.Context, req models.CreateTrackRequest) (*models.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Creates++
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	req = req.WithDefaults()
	tr := models.Track{
		ID:       strconv.Itoa(f.nextID),
		Title:    req.Title,
		Artist:   req.Artist,
		Album:    req.Album,
		Cover:    req.Cover,
		AudioURL: req.AudioURL,
		Duration: req.Duration,
		Genre:    req.Genre,
	}
	f.nextID++
	f.tracks = append([]models.Track{tr}, f.tracks...)
	return &tr, nil
}

func (f *FakeCatalog) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deletes = append(f.Deletes, id)
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.tracks = slices.DeleteFunc(f.tracks, func(t models.Track) bool { return t.ID == id })
	return nil
}

// Seed adds SeedWith when the catalog is empty.
func (f *FakeCatalog) Seed(ctx context.Context) (*models.MessageResponse, error) {
	f.mu.Lock()
	n := len(f.tracks)
	f.mu.Unlock()
	if n > 0 {
		return &models.MessageResponse{Message: models.MsgAlreadySeeded, Count: n}, nil
	}
	for _, r := range f.SeedWith {
		if _, err := f.Create(ctx, r); err != nil {
			return nil, err
		}
	}
	return &models.MessageResponse{Message: models.MsgSeeded}, nil
}

// WAVBytes builds a mono 16-bit PCM WAV of silence.
func WAVBytes(sampleRate, samples int) []byte {
	var buf bytes.Buffer
	dataSize := samples * 2

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))

	return buf.Bytes()
}
