package decode

import (
	"encoding/binary"
	"io"

	"github.com/ibukiaudio/ibuki/internal/ibukierr"
)

// wavDecoder reads PCM samples directly out of a canonical RIFF/WAVE
// container. Only 16-bit integer PCM is supported; anything else fails with
// FormatReadError during header parsing.
type wavDecoder struct {
	r             io.ReadSeeker
	sampleRate    int
	channels      int
	bitsPerSample int
	dataStart     int64
	dataEnd       int64
	pos           int64
}

func newWAVDecoder(r io.ReadSeeker) (*wavDecoder, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, ibukierr.Wrap(ibukierr.KindFormatReadError, "reading RIFF header", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, ibukierr.New(ibukierr.KindFormatReadError, "not a RIFF/WAVE container")
	}

	d := &wavDecoder{r: r}
	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			return nil, ibukierr.Wrap(ibukierr.KindFormatReadError, "reading chunk header", err)
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := int64(binary.LittleEndian.Uint32(chunkHeader[4:8]))

		switch chunkID {
		case "fmt ":
			fmtBody := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, fmtBody); err != nil {
				return nil, ibukierr.Wrap(ibukierr.KindFormatReadError, "reading fmt chunk", err)
			}
			audioFormat := binary.LittleEndian.Uint16(fmtBody[0:2])
			if audioFormat != 1 {
				return nil, ibukierr.New(ibukierr.KindFormatReadError, "only PCM wave data is supported")
			}
			d.channels = int(binary.LittleEndian.Uint16(fmtBody[2:4]))
			d.sampleRate = int(binary.LittleEndian.Uint32(fmtBody[4:8]))
			d.bitsPerSample = int(binary.LittleEndian.Uint16(fmtBody[14:16]))
			if d.bitsPerSample != 16 {
				return nil, ibukierr.New(ibukierr.KindFormatReadError, "only 16-bit PCM wave data is supported")
			}
		case "data":
			cur, err := r.Seek(0, io.SeekCurrent)
			if err != nil {
				return nil, ibukierr.Wrap(ibukierr.KindFormatReadError, "locating data chunk", err)
			}
			d.dataStart = cur
			d.dataEnd = cur + chunkSize
			d.pos = d.dataStart
			if d.channels == 0 || d.sampleRate == 0 {
				return nil, ibukierr.New(ibukierr.KindFormatReadError, "data chunk before fmt chunk")
			}
			return d, nil
		default:
			if _, err := r.Seek(chunkSize, io.SeekCurrent); err != nil {
				return nil, ibukierr.Wrap(ibukierr.KindFormatReadError, "skipping unknown chunk", err)
			}
		}
	}
}

func (d *wavDecoder) ReadFrames() ([]int16, error) {
	remaining := d.dataEnd - d.pos
	if remaining <= 0 {
		return nil, io.EOF
	}
	const chunkBytes = 4096
	want := int64(chunkBytes)
	if remaining < want {
		want = remaining
	}
	want -= want % 2

	buf := make([]byte, want)
	n, err := io.ReadFull(d.r, buf)
	d.pos += int64(n)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, ibukierr.Wrap(ibukierr.KindDecodeError, "reading wave samples", err)
	}
	buf = buf[:n-n%2]

	samples := make([]int16, len(buf)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
	}
	return samples, nil
}

func (d *wavDecoder) SampleRate() int { return d.sampleRate }
func (d *wavDecoder) Channels() int   { return d.channels }
func (d *wavDecoder) Close() error    { return nil }

func (d *wavDecoder) SeekToStart() error {
	_, err := d.r.Seek(d.dataStart, io.SeekStart)
	if err != nil {
		return ibukierr.Wrap(ibukierr.KindFormatReadError, "seeking wave decoder to start", err)
	}
	d.pos = d.dataStart
	return nil
}
