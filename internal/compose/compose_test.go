package compose

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/ibukiaudio/ibuki/internal/filterchain"
	"github.com/ibukiaudio/ibuki/internal/ibukierr"
	"github.com/ibukiaudio/ibuki/internal/resolve"
	"github.com/ibukiaudio/ibuki/internal/source/decode"
)

type fakeResolver struct {
	wav   []byte
	async bool
	fail  error
}

func (f *fakeResolver) ParseQuery(identifier string) (resolve.Query, error) {
	return resolve.Query{Kind: resolve.QueryDirectURL, Raw: identifier}, nil
}

func (f *fakeResolver) Resolve(ctx context.Context, q resolve.Query) (resolve.PlayableRef, error) {
	if f.fail != nil {
		return resolve.PlayableRef{}, f.fail
	}
	return resolve.PlayableRef{URL: q.Raw}, nil
}

func (f *fakeResolver) MakePlayable(ctx context.Context, ref resolve.PlayableRef) (io.ReadSeeker, decode.Hint, bool, error) {
	return bytes.NewReader(f.wav), decode.HintWAV, true, nil
}

func (f *fakeResolver) ShouldCreateAsync() bool { return f.async }

func buildWAV(samples []int16) []byte {
	dataBytes := make([]byte, len(samples)*2)
	for i, s := range samples {
		dataBytes[i*2] = byte(uint16(s))
		dataBytes[i*2+1] = byte(uint16(s) >> 8)
	}
	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	le32(buf, uint32(36+len(dataBytes)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	le32(buf, 16)
	le16(buf, 1)
	le16(buf, 2)
	le32(buf, 44100)
	le32(buf, 44100*4)
	le16(buf, 4)
	le16(buf, 16)
	buf.WriteString("data")
	le32(buf, uint32(len(dataBytes)))
	buf.Write(dataBytes)
	return buf.Bytes()
}

func le32(buf *bytes.Buffer, v uint32) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v >> 16))
	buf.WriteByte(byte(v >> 24))
}

func le16(buf *bytes.Buffer, v uint16) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
}

func TestCreateBuildsFilteredSource(t *testing.T) {
	r := &fakeResolver{wav: buildWAV([]int16{1, 2, 3, 4})}
	a := New(r, Defaults{SampleRate: 44100, Channels: 2})
	fs, err := a.Create(context.Background(), "https://example.invalid/a.wav", filterchain.NewHolder(nil))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if fs.SampleRate() != 44100 {
		t.Fatalf("expected 44100, got %d", fs.SampleRate())
	}
}

func TestCreateAsyncBuildsFilteredSource(t *testing.T) {
	r := &fakeResolver{wav: buildWAV([]int16{1, 2}), async: true}
	a := New(r, Defaults{SampleRate: 44100, Channels: 2})
	fs, err := a.CreateAsync(context.Background(), "https://example.invalid/a.wav", filterchain.NewHolder(nil))
	if err != nil {
		t.Fatalf("CreateAsync: %v", err)
	}
	if fs.Channels() != 2 {
		t.Fatalf("expected 2 channels, got %d", fs.Channels())
	}
}

func TestShouldCreateAsyncDelegates(t *testing.T) {
	a := New(&fakeResolver{async: true}, Defaults{})
	if !a.ShouldCreateAsync() {
		t.Fatal("expected delegation to report true")
	}
}

func TestCreateWrapsResolverFailure(t *testing.T) {
	r := &fakeResolver{fail: ibukierr.New(ibukierr.KindResolverError, "boom")}
	a := New(r, Defaults{SampleRate: 44100, Channels: 2})
	_, err := a.Create(context.Background(), "https://example.invalid/a.wav", filterchain.NewHolder(nil))
	if !ibukierr.Is(err, ibukierr.KindAudioStreamFail) {
		t.Fatalf("expected AudioStreamFail, got %v", err)
	}
}
