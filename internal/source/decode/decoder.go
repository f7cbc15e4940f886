// Package decode implements the small "probe + decoder" pair the filtered
// source needs (§4.3 step 2-3): sniff the input's container format, then
// hand back a Decoder that yields interleaved 16-bit PCM frame groups. There
// is no single universal demuxer crate in the Go ecosystem the way there is
// in other languages, so this package is a thin registry over a handful of
// concrete format decoders (WAV, MP3 via hajimehoshi/go-mp3, FLAC via
// mewkiz/flac) instead.
package decode

import (
	"io"

	"github.com/ibukiaudio/ibuki/internal/ibukierr"
)

// Decoder pulls successive groups of interleaved int16 samples from a
// selected audio track. ReadFrames returns io.EOF itself (unwrapped) once
// the track is exhausted; callers treat that as the canonical end of stream (§4.3).
type Decoder interface {
	// ReadFrames decodes the next chunk of audio, returning interleaved
	// samples sized to the decoder's own channel count. A zero-length,
	// nil-error return is permitted and means "try again" (e.g. a
	// container-level control frame with no audio payload).
	ReadFrames() ([]int16, error)
	SampleRate() int
	Channels() int
	// Close releases any resources the decoder holds.
	Close() error
}

// Seeker is implemented by decoders/sources that support resetting to the
// beginning of the stream — required for the filtered source's "manual
// discard" seek fallback (§4.3).
type Seeker interface {
	SeekToStart() error
}

// Hint carries the caller-supplied format hint (§4.3 step 2), typically a
// file extension or MIME type fragment. Probe checks WAV, FLAC and MP3 in
// that order and picks the first whose magic bytes or hint match.
type Hint string

const (
	HintWAV  Hint = "wav"
	HintMP3  Hint = "mp3"
	HintFLAC Hint = "flac"
)

// Probe inspects the input and returns a ready Decoder for the first
// supported audio track. Fails with NoSupportedTrack if no registered
// decoder claims the stream (§4.3 step 2).
func Probe(r io.ReadSeeker, hint Hint, defaultSampleRate, defaultChannels int) (Decoder, error) {
	magic := make([]byte, 12)
	n, err := io.ReadFull(r, magic)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, ibukierr.Wrap(ibukierr.KindProbeFailed, "reading magic bytes", err)
	}
	magic = magic[:n]
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, ibukierr.Wrap(ibukierr.KindProbeFailed, "rewinding after magic sniff", err)
	}

	switch {
	case looksLikeWAV(magic) || hint == HintWAV:
		return newWAVDecoder(r)
	case looksLikeFLAC(magic) || hint == HintFLAC:
		return newFLACDecoder(r)
	case hint == HintMP3 || looksLikeMP3(magic):
		return newMP3Decoder(r, defaultSampleRate, defaultChannels)
	default:
		return nil, ibukierr.New(ibukierr.KindNoSupportedTrack, "no supported audio track in input")
	}
}

func looksLikeWAV(magic []byte) bool {
	return len(magic) >= 12 && string(magic[0:4]) == "RIFF" && string(magic[8:12]) == "WAVE"
}

func looksLikeFLAC(magic []byte) bool {
	return len(magic) >= 4 && string(magic[0:4]) == "fLaC"
}

func looksLikeMP3(magic []byte) bool {
	if len(magic) >= 3 && string(magic[0:3]) == "ID3" {
		return true
	}
	// MPEG frame sync: 11 set bits at the start of a frame header.
	return len(magic) >= 2 && magic[0] == 0xFF && magic[1]&0xE0 == 0xE0
}
