package media

import (
	"bytes"
	"fmt"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"

	"github.com/desertthunder/sonic57/internal/shared"
)

type audioFormat int

const (
	formatUnknown audioFormat = iota
	formatMP3
	formatWAV
	formatFLAC
)

func (f audioFormat) String() string {
	switch f {
	case formatMP3:
		return "mp3"
	case formatWAV:
		return "wav"
	case formatFLAC:
		return "flac"
	default:
		return "unknown"
	}
}

// sniffFormat identifies the container from its magic bytes.
func sniffFormat(data []byte) audioFormat {
	switch {
	case bytes.HasPrefix(data, []byte("ID3")):
		return formatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return formatMP3
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return formatWAV
	case bytes.HasPrefix(data, []byte("fLaC")):
		return formatFLAC
	default:
		return formatUnknown
	}
}

// readSeekNopCloser keeps Seek visible to decoders that probe for it.
type readSeekNopCloser struct {
	*bytes.Reader
}

func (readSeekNopCloser) Close() error { return nil }

// Decode opens in-memory audio with the decoder for its container. The
// returned streamer is seekable.
func Decode(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	r := readSeekNopCloser{bytes.NewReader(data)}

	switch f := sniffFormat(data); f {
	case formatMP3:
		return mp3.Decode(r)
	case formatWAV:
		return wav.Decode(r)
	case formatFLAC:
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: unrecognized audio container", shared.ErrUnsupportedMedia)
	}
}
