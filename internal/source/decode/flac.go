package decode

import (
	"io"

	"github.com/mewkiz/flac"

	"github.com/ibukiaudio/ibuki/internal/ibukierr"
)

// flacDecoder wraps mewkiz/flac, which parses the stream frame by frame
// rather than handing back a flat byte stream. Each frame's per-channel
// subframe samples are interleaved and, when the source bit depth exceeds
// 16 bits, rescaled down to the int16 range the filter chain operates on.
type flacDecoder struct {
	stream   *flac.Stream
	bitDepth int
}

func newFLACDecoder(r io.ReadSeeker) (*flacDecoder, error) {
	stream, err := flac.NewSeek(r)
	if err != nil {
		return nil, ibukierr.Wrap(ibukierr.KindDecoderInit, "initialising flac decoder", err)
	}
	return &flacDecoder{stream: stream, bitDepth: int(stream.Info.BitsPerSample)}, nil
}

func (d *flacDecoder) ReadFrames() ([]int16, error) {
	frame, err := d.stream.ParseNext()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, ibukierr.Wrap(ibukierr.KindDecodeError, "parsing flac frame", err)
	}

	channels := len(frame.Subframes)
	if channels == 0 {
		return nil, nil
	}
	samplesPerChannel := len(frame.Subframes[0].Samples)
	out := make([]int16, samplesPerChannel*channels)
	shift := uint(0)
	if d.bitDepth > 16 {
		shift = uint(d.bitDepth - 16)
	}
	for i := 0; i < samplesPerChannel; i++ {
		for ch := 0; ch < channels; ch++ {
			v := frame.Subframes[ch].Samples[i]
			if shift > 0 {
				v >>= shift
			}
			out[i*channels+ch] = int16(v)
		}
	}
	return out, nil
}

func (d *flacDecoder) SampleRate() int { return int(d.stream.Info.SampleRate) }
func (d *flacDecoder) Channels() int   { return int(d.stream.Info.NChannels) }
func (d *flacDecoder) Close() error    { return d.stream.Close() }

func (d *flacDecoder) SeekToStart() error {
	if err := d.stream.Seek(0); err != nil {
		return ibukierr.Wrap(ibukierr.KindFormatReadError, "seeking flac decoder to start", err)
	}
	return nil
}
