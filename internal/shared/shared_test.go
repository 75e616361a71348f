package shared

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		name string
		in   time.Duration
		want string
	}{
		{name: "zero", in: 0, want: "00:00"},
		{name: "negative clamps", in: -5 * time.Second, want: "00:00"},
		{name: "minutes and seconds", in: 6*time.Minute + 12*time.Second, want: "06:12"},
		{name: "rounds to nearest second", in: 2*time.Minute + 58*time.Second + 600*time.Millisecond, want: "02:59"},
		{name: "over an hour", in: time.Hour + 2*time.Minute + 3*time.Second, want: "1:02:03"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.in); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tc := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "mm:ss", in: "06:12", want: 6*time.Minute + 12*time.Second},
		{name: "h:mm:ss", in: "1:02:03", want: time.Hour + 2*time.Minute + 3*time.Second},
		{name: "whitespace", in: " 07:05 ", want: 7*time.Minute + 5*time.Second},
		{name: "empty", in: "", wantErr: true},
		{name: "no separator", in: "372", wantErr: true},
		{name: "seconds overflow", in: "01:75", wantErr: true},
		{name: "garbage", in: "ab:cd", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	t.Run("ParseLogLevel", func(t *testing.T) {
		lvl, err := ParseLogLevel("")
		if err != nil || lvl != log.InfoLevel {
			t.Errorf("empty level should default to info, got %v (%v)", lvl, err)
		}

		lvl, err = ParseLogLevel("DEBUG")
		if err != nil || lvl != log.DebugLevel {
			t.Errorf("expected debug, got %v (%v)", lvl, err)
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "test")
		logger.Info("hello")

		if !strings.Contains(buf.String(), "component=test") {
			t.Errorf("expected component field in %q", buf.String())
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "sonic57.log")
		logger, closer, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		defer closer.Close()
		logger.Info("written")
	})
}

func TestOpenBrowserRejectsNonHTTP(t *testing.T) {
	if err := OpenBrowser("file:///etc/passwd"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
