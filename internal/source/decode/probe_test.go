package decode

import (
	"bytes"
	"testing"
)

type seekBuf struct {
	*bytes.Reader
}

func newSeekBuf(b []byte) *seekBuf { return &seekBuf{bytes.NewReader(b)} }

func buildWAV(samples []int16) []byte {
	dataBytes := make([]byte, len(samples)*2)
	for i, s := range samples {
		dataBytes[i*2] = byte(uint16(s))
		dataBytes[i*2+1] = byte(uint16(s) >> 8)
	}

	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	writeLE32(buf, uint32(36+len(dataBytes)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	writeLE32(buf, 16)
	writeLE16(buf, 1)  // PCM
	writeLE16(buf, 2)  // channels
	writeLE32(buf, 44100)
	writeLE32(buf, 44100*2*2)
	writeLE16(buf, 4)
	writeLE16(buf, 16)
	buf.WriteString("data")
	writeLE32(buf, uint32(len(dataBytes)))
	buf.Write(dataBytes)
	return buf.Bytes()
}

func writeLE32(buf *bytes.Buffer, v uint32) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v >> 16))
	buf.WriteByte(byte(v >> 24))
}

func writeLE16(buf *bytes.Buffer, v uint16) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
}

func TestProbeSelectsWAVByMagic(t *testing.T) {
	data := buildWAV([]int16{1, -1, 2, -2})
	dec, err := Probe(newSeekBuf(data), "", 44100, 2)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if dec.SampleRate() != 44100 || dec.Channels() != 2 {
		t.Fatalf("unexpected format: rate=%d channels=%d", dec.SampleRate(), dec.Channels())
	}
	frames, err := dec.ReadFrames()
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if len(frames) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(frames))
	}
}

func TestProbeFailsOnUnrecognisedInput(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b}
	if _, err := Probe(newSeekBuf(data), "", 44100, 2); err == nil {
		t.Fatal("expected NoSupportedTrack error")
	}
}

func TestWAVSeekToStart(t *testing.T) {
	data := buildWAV([]int16{1, 2, 3, 4, 5, 6})
	dec, err := newWAVDecoder(newSeekBuf(data))
	if err != nil {
		t.Fatalf("newWAVDecoder: %v", err)
	}
	first, err := dec.ReadFrames()
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if err := dec.SeekToStart(); err != nil {
		t.Fatalf("SeekToStart: %v", err)
	}
	again, err := dec.ReadFrames()
	if err != nil {
		t.Fatalf("ReadFrames after seek: %v", err)
	}
	if len(first) != len(again) {
		t.Fatalf("frame count changed after seek: %d vs %d", len(first), len(again))
	}
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("sample %d mismatch after seek: %d vs %d", i, first[i], again[i])
		}
	}
}
