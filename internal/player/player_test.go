package player

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/ibukiaudio/ibuki/internal/compose"
	"github.com/ibukiaudio/ibuki/internal/filterchain"
	"github.com/ibukiaudio/ibuki/internal/notify"
	"github.com/ibukiaudio/ibuki/internal/resolve"
	"github.com/ibukiaudio/ibuki/internal/scheduler"
	"github.com/ibukiaudio/ibuki/internal/source/decode"
	"github.com/ibukiaudio/ibuki/internal/trackcodec"
	"github.com/ibukiaudio/ibuki/internal/transport"
)

type fakeDriver struct {
	mu         sync.Mutex
	dialed     bool
	played     bool
	paused     bool
	volume     float64
	stopped    bool
	onDisc     func(transport.CloseReason)
	disconnect bool
	position   int64
	// naturalEnd, when true, makes PlayTrack's pump-equivalent call
	// onTrackEnd once src drains on its own, mirroring a real driver's
	// behavior on unassisted EOF. Stop() never triggers it.
	naturalEnd bool
}

func (d *fakeDriver) Dial(ctx context.Context, creds transport.Credentials) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialed = true
	return nil
}

func (d *fakeDriver) PlayTrack(src io.Reader, sampleRate, channels int, onPlayable, onTrackEnd func()) error {
	d.mu.Lock()
	d.played = true
	natural := d.naturalEnd
	d.mu.Unlock()
	go func() {
		io.Copy(io.Discard, src)
		if onPlayable != nil {
			onPlayable()
		}
		if natural && onTrackEnd != nil {
			onTrackEnd()
		}
	}()
	return nil
}

func (d *fakeDriver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
}

func (d *fakeDriver) NotifySeeked(byteOffset int64) {}

func (d *fakeDriver) Pause(p bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = p
}

func (d *fakeDriver) SetVolume(v float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.volume = v
}

func (d *fakeDriver) PositionMs() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position
}

func (d *fakeDriver) OnDisconnect(fn func(transport.CloseReason)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onDisc = fn
}

func (d *fakeDriver) Disconnect() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disconnect = true
}

type fakeResolver struct{ wav []byte }

func (f *fakeResolver) ParseQuery(identifier string) (resolve.Query, error) {
	return resolve.Query{Kind: resolve.QueryDirectURL, Raw: identifier}, nil
}

func (f *fakeResolver) Resolve(ctx context.Context, q resolve.Query) (resolve.PlayableRef, error) {
	return resolve.PlayableRef{URL: q.Raw}, nil
}

func (f *fakeResolver) MakePlayable(ctx context.Context, ref resolve.PlayableRef) (io.ReadSeeker, decode.Hint, bool, error) {
	return bytes.NewReader(f.wav), decode.HintWAV, true, nil
}

func (f *fakeResolver) ShouldCreateAsync() bool { return true }

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

func newTestPlayer(t *testing.T, driver *fakeDriver, wav []byte) *Player {
	t.Helper()
	chain := filterchain.NewHolder(nil)
	adapter := compose.New(&fakeResolver{wav: wav}, compose.Defaults{SampleRate: 44100, Channels: 2})
	channel := notify.NewChannel()
	return New("session-1", "guild-1", chain, adapter, channel, func() transport.Driver { return driver }, nil, 0)
}

func TestConnectCreatesDriverOnce(t *testing.T) {
	driver := &fakeDriver{}
	p := newTestPlayer(t, driver, buildWAV([]int16{1, 2}))
	if err := p.Connect(context.Background(), transport.Credentials{Endpoint: "e", Token: "t", SessionID: "s"}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if p.Snapshot().State != "connected" {
		t.Fatalf("expected connected state, got %v", p.Snapshot().State)
	}
	if err := p.Connect(context.Background(), transport.Credentials{Endpoint: "e", Token: "t", SessionID: "s"}); err != nil {
		t.Fatalf("second Connect: %v", err)
	}
}

func TestPlayRequiresURI(t *testing.T) {
	driver := &fakeDriver{}
	p := newTestPlayer(t, driver, buildWAV([]int16{1, 2}))
	_ = p.Connect(context.Background(), transport.Credentials{Endpoint: "e", Token: "t", SessionID: "s"})

	blob := trackcodec.Encode(&trackcodec.Track{Title: "x", Author: "y", Identifier: "z", SourceName: "s"})
	if err := p.Play(context.Background(), blob); err == nil {
		t.Fatal("expected error for track without uri")
	}
}

func TestPlaySetsPlayingState(t *testing.T) {
	driver := &fakeDriver{}
	p := newTestPlayer(t, driver, buildWAV([]int16{1, 1, 2, 2, 3, 3}))
	_ = p.Connect(context.Background(), transport.Credentials{Endpoint: "e", Token: "t", SessionID: "s"})

	uri := "https://example.invalid/a.wav"
	blob := trackcodec.Encode(&trackcodec.Track{Title: "x", Author: "y", Identifier: "z", SourceName: "direct", URI: &uri})
	if err := p.Play(context.Background(), blob); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if p.Snapshot().State != "playing" {
		t.Fatalf("expected playing state, got %v", p.Snapshot().State)
	}
}

func TestPauseIsNoopWhenAlreadyInState(t *testing.T) {
	driver := &fakeDriver{}
	p := newTestPlayer(t, driver, buildWAV([]int16{1, 2}))
	_ = p.Connect(context.Background(), transport.Credentials{Endpoint: "e", Token: "t", SessionID: "s"})
	p.Pause(false) // already unpaused: should not touch the driver
	driver.mu.Lock()
	touched := driver.paused
	driver.mu.Unlock()
	if touched {
		t.Fatal("expected driver.Pause not to be called for a noop pause")
	}
}

func TestSetVolumeUpdatesDriverAndData(t *testing.T) {
	driver := &fakeDriver{}
	p := newTestPlayer(t, driver, buildWAV([]int16{1, 2}))
	_ = p.Connect(context.Background(), transport.Credentials{Endpoint: "e", Token: "t", SessionID: "s"})
	p.SetVolume(0.5)
	if p.Snapshot().Volume != 0.5 {
		t.Fatalf("expected data volume 0.5, got %v", p.Snapshot().Volume)
	}
	driver.mu.Lock()
	v := driver.volume
	driver.mu.Unlock()
	if v != 0.5 {
		t.Fatalf("expected driver volume 0.5, got %v", v)
	}
}

func TestPlayStoresLengthAndStreamFlag(t *testing.T) {
	driver := &fakeDriver{}
	p := newTestPlayer(t, driver, buildWAV([]int16{1, 1, 2, 2, 3, 3}))
	_ = p.Connect(context.Background(), transport.Credentials{Endpoint: "e", Token: "t", SessionID: "s"})

	uri := "https://example.invalid/a.wav"
	blob := trackcodec.Encode(&trackcodec.Track{Title: "x", Author: "y", Identifier: "z", SourceName: "direct", URI: &uri, LengthMs: 12345})
	if err := p.Play(context.Background(), blob); err != nil {
		t.Fatalf("Play: %v", err)
	}
	snap := p.Snapshot()
	if snap.LengthMs != 12345 || snap.IsStream {
		t.Fatalf("expected length mirrored onto Data for a non-stream track, got %+v", snap)
	}
}

func TestSeekNoopBeyondTrackLength(t *testing.T) {
	driver := &fakeDriver{}
	p := newTestPlayer(t, driver, buildWAV([]int16{1, 1, 2, 2, 3, 3, 4, 4}))
	_ = p.Connect(context.Background(), transport.Credentials{Endpoint: "e", Token: "t", SessionID: "s"})

	uri := "https://example.invalid/a.wav"
	blob := trackcodec.Encode(&trackcodec.Track{Title: "x", Author: "y", Identifier: "z", SourceName: "direct", URI: &uri, LengthMs: 50})
	if err := p.Play(context.Background(), blob); err != nil {
		t.Fatalf("Play: %v", err)
	}

	snap := p.Snapshot()
	if err := p.Seek(100, snap.LengthMs, snap.IsStream); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if p.Snapshot().PositionMs != 0 {
		t.Fatalf("expected seek beyond track length to be a noop, got position %d", p.Snapshot().PositionMs)
	}
}

func TestSeekAppliesWithinTrackLength(t *testing.T) {
	driver := &fakeDriver{}
	p := newTestPlayer(t, driver, buildWAV([]int16{1, 1, 2, 2, 3, 3, 4, 4}))
	_ = p.Connect(context.Background(), transport.Credentials{Endpoint: "e", Token: "t", SessionID: "s"})

	uri := "https://example.invalid/a.wav"
	blob := trackcodec.Encode(&trackcodec.Track{Title: "x", Author: "y", Identifier: "z", SourceName: "direct", URI: &uri, LengthMs: 5000})
	if err := p.Play(context.Background(), blob); err != nil {
		t.Fatalf("Play: %v", err)
	}

	snap := p.Snapshot()
	if err := p.Seek(10, snap.LengthMs, snap.IsStream); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if p.Snapshot().PositionMs != 10 {
		t.Fatalf("expected position 10 after seek, got %d", p.Snapshot().PositionMs)
	}
}

func TestSeekNoopNeverBlockedForStream(t *testing.T) {
	driver := &fakeDriver{}
	p := newTestPlayer(t, driver, buildWAV([]int16{1, 1, 2, 2, 3, 3, 4, 4}))
	_ = p.Connect(context.Background(), transport.Credentials{Endpoint: "e", Token: "t", SessionID: "s"})

	uri := "https://example.invalid/a.wav"
	blob := trackcodec.Encode(&trackcodec.Track{Title: "x", Author: "y", Identifier: "z", SourceName: "direct", URI: &uri, LengthMs: 50, IsStream: true})
	if err := p.Play(context.Background(), blob); err != nil {
		t.Fatalf("Play: %v", err)
	}

	snap := p.Snapshot()
	if err := p.Seek(100, snap.LengthMs, snap.IsStream); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if p.Snapshot().PositionMs != 100 {
		t.Fatalf("expected a stream's seek past length to still apply, got %d", p.Snapshot().PositionMs)
	}
}

func TestNaturalTrackEndEmitsTrackEndAndClearsActive(t *testing.T) {
	driver := &fakeDriver{naturalEnd: true}
	p := newTestPlayer(t, driver, buildWAV([]int16{1, 1, 2, 2}))
	_ = p.Connect(context.Background(), transport.Credentials{Endpoint: "e", Token: "t", SessionID: "s"})

	uri := "https://example.invalid/a.wav"
	blob := trackcodec.Encode(&trackcodec.Track{Title: "x", Author: "y", Identifier: "z", SourceName: "direct", URI: &uri})
	if err := p.Play(context.Background(), blob); err != nil {
		t.Fatalf("Play: %v", err)
	}

	deadline := time.After(time.Second)
	for {
		if !p.Snapshot().Active {
			break
		}
		select {
		case <-deadline:
			t.Fatal("expected natural EOF to clear Active via TrackEnd, timed out waiting")
		case <-time.After(5 * time.Millisecond):
		}
	}
	snap := p.Snapshot()
	if snap.TrackBlob != "" || snap.State != "ended" {
		t.Fatalf("expected cleared track state after natural end, got %+v", snap)
	}
}

func TestPeriodicTickEmitsPlayerUpdateWhileActive(t *testing.T) {
	driver := &fakeDriver{}
	chain := filterchain.NewHolder(nil)
	adapter := compose.New(&fakeResolver{wav: buildWAV([]int16{1, 1, 2, 2})}, compose.Defaults{SampleRate: 44100, Channels: 2})
	channel := notify.NewChannel()
	sched := scheduler.New()
	defer sched.Stop()
	p := New("session-2", "guild-2", chain, adapter, channel, func() transport.Driver { return driver }, sched, 5*time.Millisecond)

	if err := p.Connect(context.Background(), transport.Credentials{Endpoint: "e", Token: "t", SessionID: "s"}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	uri := "https://example.invalid/a.wav"
	blob := trackcodec.Encode(&trackcodec.Track{Title: "x", Author: "y", Identifier: "z", SourceName: "direct", URI: &uri})
	if err := p.Play(context.Background(), blob); err != nil {
		t.Fatalf("Play: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, ok := channel.RecvCtx(ctx)
	for ok && msg.Op != notify.OpPlayerUpdate {
		msg, ok = channel.RecvCtx(ctx)
	}
	if !ok {
		t.Fatal("expected a PlayerUpdate message from the periodic tick")
	}
}

func TestDisconnectMarksDisconnected(t *testing.T) {
	driver := &fakeDriver{}
	p := newTestPlayer(t, driver, buildWAV([]int16{1, 2}))
	_ = p.Connect(context.Background(), transport.Credentials{Endpoint: "e", Token: "t", SessionID: "s"})
	p.Disconnect()
	if p.Snapshot().State != "disconnected" {
		t.Fatalf("expected disconnected state, got %v", p.Snapshot().State)
	}
	time.Sleep(5 * time.Millisecond)
	driver.mu.Lock()
	defer driver.mu.Unlock()
	if !driver.disconnect {
		t.Fatal("expected driver.Disconnect to have been called")
	}
}
