// Package source implements the filtered source described in §4.3: it
// couples a probed decoder and a shared filter chain to a single
// byte-oriented, seekable read contract prefixed by a synthetic linear-PCM
// container header.
package source

import (
	"io"

	"github.com/ibukiaudio/ibuki/internal/filterchain"
	"github.com/ibukiaudio/ibuki/internal/ibukierr"
	"github.com/ibukiaudio/ibuki/internal/source/decode"
)

const ringCapacity = 8 * 1024

// FrameSeeker is implemented by decoders that can seek directly to a given
// PCM frame offset without replaying every preceding packet. None of the
// bundled decoders implement it today, so every seek currently falls back
// to the manual-discard path (§4.3 step "Attempt a demuxer accurate-seek").
type FrameSeeker interface {
	SeekToFrame(frame int64) error
}

// FilteredSource is constructed from an opaque seekable byte source, a
// format hint, a shared filter-chain handle, and default sample-rate /
// channel-count values used until the decoder's real parameters are known.
type FilteredSource struct {
	input    io.ReadSeeker
	seekable bool
	chain    *filterchain.Holder

	decoder    decode.Decoder
	sampleRate int
	channels   int

	header    [headerSize]byte
	headerPos int

	ring            *ring
	currentPCMFrame int64
}

// New performs filtered-source construction (§4.3 steps 1-5): probing,
// decoder construction, pushing the real format into the filter chain, and
// allocating the header and ring buffer. It may block on the underlying
// reader.
func New(input io.ReadSeeker, hint decode.Hint, chain *filterchain.Holder, seekable bool, defaultSampleRate, defaultChannels int) (*FilteredSource, error) {
	dec, err := decode.Probe(input, hint, defaultSampleRate, defaultChannels)
	if err != nil {
		return nil, err
	}

	sampleRate := dec.SampleRate()
	channels := dec.Channels()
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	if channels <= 0 {
		channels = defaultChannels
	}
	chain.Current().SetSampleRate(sampleRate)

	fs := &FilteredSource{
		input:      input,
		seekable:   seekable,
		chain:      chain,
		decoder:    dec,
		sampleRate: sampleRate,
		channels:   channels,
		header:     buildHeader(sampleRate, channels),
		ring:       newRing(ringCapacity),
	}
	return fs, nil
}

func (fs *FilteredSource) SampleRate() int { return fs.sampleRate }
func (fs *FilteredSource) Channels() int   { return fs.channels }

// CurrentPCMFrame reflects the number of source PCM frames decoded since the
// last reset (§4.3 invariants).
func (fs *FilteredSource) CurrentPCMFrame() int64 { return fs.currentPCMFrame }

// Close releases the underlying decoder.
func (fs *FilteredSource) Close() error { return fs.decoder.Close() }

// Read implements the §4.3 read contract. It returns (0, io.EOF) at
// canonical end of stream, so io.ReadFull and io.Copy callers stop there.
func (fs *FilteredSource) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if fs.headerPos < headerSize {
		n := copy(p, fs.header[fs.headerPos:])
		fs.headerPos += n
		return n, nil
	}

	for fs.ring.Len() == 0 {
		done, err := fs.fillRing()
		if err != nil {
			return 0, err
		}
		if done {
			return 0, io.EOF
		}
	}
	return fs.ring.Read(p), nil
}

// fillRing decodes exactly one frame group, pushes it through the filter
// chain and writes it into the ring. done reports canonical EOF.
func (fs *FilteredSource) fillRing() (done bool, err error) {
	samples, rerr := fs.decoder.ReadFrames()
	if rerr != nil {
		if rerr == io.EOF {
			return true, nil
		}
		if ibukierr.Is(rerr, ibukierr.KindDecodeError) {
			// Skip the bad packet and keep going (§4.3: "on decode-error
			// skip the packet and continue").
			return false, nil
		}
		return false, ibukierr.Wrap(ibukierr.KindFormatReadError, "reading source packet", rerr)
	}
	if len(samples) == 0 {
		return false, nil
	}

	if err := fs.chain.Current().Process(samples); err != nil {
		return false, err
	}

	fs.currentPCMFrame += int64(len(samples)) / int64(fs.channels)

	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(uint16(s))
		buf[i*2+1] = byte(uint16(s) >> 8)
	}
	fs.ring.Write(buf)
	return false, nil
}

// Seek implements the §4.3 seek contract. Only SeekStart semantics are
// supported; any other whence value fails with Unsupported.
func (fs *FilteredSource) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart {
		return 0, ibukierr.New(ibukierr.KindUnsupported, "filtered source only supports seek-from-start")
	}
	if offset < 0 {
		return 0, ibukierr.New(ibukierr.KindInvalidParameter, "negative seek offset")
	}

	if offset < headerSize {
		if !fs.seekable {
			return 0, ibukierr.New(ibukierr.KindNotSeekable, "source does not support seeking into the header")
		}
		if err := fs.resetToStart(); err != nil {
			return 0, err
		}
		fs.headerPos = int(offset)
		return offset, nil
	}

	if !fs.seekable {
		return 0, ibukierr.New(ibukierr.KindNotSeekable, "source is not seekable")
	}

	targetFrame := (offset - headerSize) / int64(2*fs.channels)

	if fseeker, ok := fs.decoder.(FrameSeeker); ok {
		if err := fseeker.SeekToFrame(targetFrame); err == nil {
			fs.currentPCMFrame = targetFrame
			fs.ring.Reset()
			fs.chain.Current().ResetState()
			fs.headerPos = headerSize
			return offset, nil
		}
	}

	if err := fs.manualDiscardSeek(targetFrame); err != nil {
		return 0, err
	}
	fs.headerPos = headerSize
	return offset, nil
}

func (fs *FilteredSource) resetToStart() error {
	seeker, ok := fs.decoder.(decode.Seeker)
	if !ok {
		return ibukierr.New(ibukierr.KindNotSeekable, "decoder does not support resetting to start")
	}
	if err := seeker.SeekToStart(); err != nil {
		return err
	}
	fs.currentPCMFrame = 0
	fs.ring.Reset()
	fs.chain.Current().ResetState()
	return nil
}

// manualDiscardSeek resets the demuxer to timestamp zero, then decodes and
// discards packets, counting frames, until the desired frame is reached
// (§4.3 "manual discard" fallback).
func (fs *FilteredSource) manualDiscardSeek(targetFrame int64) error {
	if err := fs.resetToStart(); err != nil {
		return err
	}

	for fs.currentPCMFrame < targetFrame {
		samples, err := fs.decoder.ReadFrames()
		if err != nil {
			if err == io.EOF {
				break
			}
			if ibukierr.Is(err, ibukierr.KindDecodeError) {
				continue
			}
			return ibukierr.Wrap(ibukierr.KindFormatReadError, "discarding packets during seek", err)
		}
		if len(samples) == 0 {
			continue
		}
		framesInGroup := int64(len(samples)) / int64(fs.channels)
		if fs.currentPCMFrame+framesInGroup > targetFrame {
			// Land exactly on the target frame: push the overshoot tail
			// through the filter chain and into the ring so the next Read
			// starts precisely at the requested offset.
			overshootFrames := fs.currentPCMFrame + framesInGroup - targetFrame
			skipSamples := (framesInGroup - overshootFrames) * int64(fs.channels)
			tail := samples[skipSamples:]
			if err := fs.chain.Current().Process(tail); err != nil {
				return err
			}
			buf := make([]byte, len(tail)*2)
			for i, s := range tail {
				buf[i*2] = byte(uint16(s))
				buf[i*2+1] = byte(uint16(s) >> 8)
			}
			fs.ring.Write(buf)
			fs.currentPCMFrame = targetFrame + overshootFrames
			return nil
		}
		fs.currentPCMFrame += framesInGroup
	}
	return nil
}
