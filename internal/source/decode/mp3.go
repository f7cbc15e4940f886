package decode

import (
	"encoding/binary"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ibukiaudio/ibuki/internal/ibukierr"
)

// mp3Decoder wraps hajimehoshi/go-mp3, which always hands back interleaved
// 16-bit little-endian stereo PCM regardless of the source file's original
// channel layout.
type mp3Decoder struct {
	r    io.ReadSeeker
	dec  *gomp3.Decoder
	rate int
}

func newMP3Decoder(r io.ReadSeeker, defaultSampleRate, defaultChannels int) (*mp3Decoder, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, ibukierr.Wrap(ibukierr.KindDecoderInit, "initialising mp3 decoder", err)
	}
	return &mp3Decoder{r: r, dec: dec, rate: dec.SampleRate()}, nil
}

func (d *mp3Decoder) ReadFrames() ([]int16, error) {
	buf := make([]byte, 4096)
	n, err := d.dec.Read(buf)
	if n == 0 && err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, ibukierr.Wrap(ibukierr.KindDecodeError, "decoding mp3 frame", err)
	}
	buf = buf[:n-n%4]
	samples := make([]int16, len(buf)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
	}
	return samples, nil
}

func (d *mp3Decoder) SampleRate() int { return d.rate }
func (d *mp3Decoder) Channels() int   { return 2 }
func (d *mp3Decoder) Close() error    { return nil }

func (d *mp3Decoder) SeekToStart() error {
	if _, err := d.r.Seek(0, io.SeekStart); err != nil {
		return ibukierr.Wrap(ibukierr.KindFormatReadError, "rewinding mp3 source", err)
	}
	dec, err := gomp3.NewDecoder(d.r)
	if err != nil {
		return ibukierr.Wrap(ibukierr.KindDecoderInit, "re-initialising mp3 decoder", err)
	}
	d.dec = dec
	return nil
}
