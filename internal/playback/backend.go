package playback

import (
	"context"
	"time"
)

// Backend opens audio sources. Each returned [Stream] owns one audio output
// resource until it is closed.
type Backend interface {
	Open(ctx context.Context, src string) (Stream, error)
}

// Stream is one loaded, decodable source. A new stream starts paused at 0.
//
// Duration returns 0 until the length is known. The OnEnd callback fires
// once each time playback reaches the natural end of media and never after
// Close. Play after the end restarts from 0.
type Stream interface {
	Play() error
	Pause() error
	Position() time.Duration
	Duration() time.Duration
	Seek(pos time.Duration) error
	SetVolume(v float64)
	OnEnd(fn func())
	Close() error
}
