package transport

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/interceptor"
	pionwebrtc "github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"gopkg.in/hraban/opus.v2"

	"github.com/ibukiaudio/ibuki/internal/ibukierr"
	"github.com/ibukiaudio/ibuki/internal/logging"
)

// headerSkipBytes mirrors the §3 synthetic container's fixed header size;
// the transport only ever carries raw PCM, so PlayTrack discards it.
const headerSkipBytes = 44

// WebRTCDriver implements Driver over a Pion peer connection, grounded on
// the teacher's gRPC-signaled streamer: a mutex-guarded lifecycle struct,
// a cancellable per-track context, and a pacing goroutine that encodes PCM
// to Opus and writes RTP samples at real-time rate.
type WebRTCDriver struct {
	mu     sync.Mutex
	logger logging.Logger
	cfg    Config

	pc         *pionwebrtc.PeerConnection
	localTrack *pionwebrtc.TrackLocalStaticSample

	trackCtx    context.Context
	trackCancel context.CancelFunc
	trackWG     sync.WaitGroup

	volume     atomic.Value // float64
	paused     atomic.Bool
	positionMs atomic.Int64
	sampleRate atomic.Int64
	channels   atomic.Int64

	onDisconnect func(reason CloseReason)
	disconnected atomic.Bool
}

func NewWebRTCDriver(logger logging.Logger, cfg Config) *WebRTCDriver {
	d := &WebRTCDriver{logger: logger, cfg: cfg}
	d.volume.Store(1.0)
	return d
}

func (d *WebRTCDriver) Dial(ctx context.Context, creds Credentials) error {
	if creds.Endpoint == "" || creds.Token == "" {
		return ibukierr.New(ibukierr.KindMissingDriver, "voice transport credentials incomplete")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pc != nil {
		// Already driving: redial means tearing down the previous peer
		// connection and building a fresh one (§4.6 "if already driving,
		// just redial").
		_ = d.pc.Close()
		d.pc = nil
		d.localTrack = nil
	}

	mediaEngine := &pionwebrtc.MediaEngine{}
	if err := mediaEngine.RegisterCodec(pionwebrtc.RTPCodecParameters{
		RTPCodecCapability: pionwebrtc.RTPCodecCapability{
			MimeType:    pionwebrtc.MimeTypeOpus,
			ClockRate:   OpusSampleRate,
			Channels:    OpusChannels,
			SDPFmtpLine: OpusSDPFmtpLine,
		},
		PayloadType: OpusPayloadType,
	}, pionwebrtc.RTPCodecTypeAudio); err != nil {
		return ibukierr.Wrap(ibukierr.KindMissingDriver, "registering opus codec", err)
	}

	registry := &interceptor.Registry{}
	if err := pionwebrtc.RegisterDefaultInterceptors(mediaEngine, registry); err != nil {
		return ibukierr.Wrap(ibukierr.KindMissingDriver, "registering interceptors", err)
	}

	api := pionwebrtc.NewAPI(
		pionwebrtc.WithMediaEngine(mediaEngine),
		pionwebrtc.WithInterceptorRegistry(registry),
	)

	iceServers := make([]pionwebrtc.ICEServer, len(d.cfg.ICEServers))
	for i, s := range d.cfg.ICEServers {
		iceServers[i] = pionwebrtc.ICEServer{URLs: s.URLs, Username: s.Username, Credential: s.Credential}
	}
	pcConfig := pionwebrtc.Configuration{ICEServers: iceServers}
	if d.cfg.ICETransportPolicy == "relay" {
		pcConfig.ICETransportPolicy = pionwebrtc.ICETransportPolicyRelay
	}

	pc, err := api.NewPeerConnection(pcConfig)
	if err != nil {
		return ibukierr.Wrap(ibukierr.KindMissingDriver, "creating peer connection", err)
	}

	track, err := pionwebrtc.NewTrackLocalStaticSample(
		pionwebrtc.RTPCodecCapability{MimeType: pionwebrtc.MimeTypeOpus, ClockRate: OpusSampleRate, Channels: OpusChannels},
		"audio", "ibuki-audio",
	)
	if err != nil {
		_ = pc.Close()
		return ibukierr.Wrap(ibukierr.KindMissingDriver, "creating local track", err)
	}
	if _, err := pc.AddTrack(track); err != nil {
		_ = pc.Close()
		return ibukierr.Wrap(ibukierr.KindMissingDriver, "adding local track", err)
	}

	pc.OnConnectionStateChange(func(state pionwebrtc.PeerConnectionState) {
		switch state {
		case pionwebrtc.PeerConnectionStateFailed:
			d.fireDisconnect(CloseServerCrash)
		case pionwebrtc.PeerConnectionStateClosed:
			d.fireDisconnect(CloseGraceful)
		case pionwebrtc.PeerConnectionStateDisconnected:
			d.fireDisconnect(CloseDisconnected)
		}
	})

	d.pc = pc
	d.localTrack = track
	d.disconnected.Store(false)
	return nil
}

func (d *WebRTCDriver) fireDisconnect(reason CloseReason) {
	if !d.disconnected.CompareAndSwap(false, true) {
		return
	}
	d.mu.Lock()
	cb := d.onDisconnect
	d.mu.Unlock()
	if cb != nil {
		cb(reason)
	}
}

func (d *WebRTCDriver) OnDisconnect(fn func(reason CloseReason)) {
	d.mu.Lock()
	d.onDisconnect = fn
	d.mu.Unlock()
}

// PlayTrack replaces the currently playing track. It blocks only long
// enough to start the pacing goroutine; playback itself proceeds
// asynchronously and stops on Stop(), src EOF, or a driver error.
func (d *WebRTCDriver) PlayTrack(src io.Reader, sampleRate, channels int, onPlayable, onTrackEnd func()) error {
	d.Stop()

	d.mu.Lock()
	track := d.localTrack
	d.mu.Unlock()
	if track == nil {
		return ibukierr.New(ibukierr.KindMissingDriver, "play requested before transport dial")
	}

	header := make([]byte, headerSkipBytes)
	if _, err := io.ReadFull(src, header); err != nil && err != io.ErrUnexpectedEOF {
		return ibukierr.Wrap(ibukierr.KindFormatReadError, "reading container header", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.mu.Lock()
	d.trackCtx = ctx
	d.trackCancel = cancel
	d.mu.Unlock()
	d.paused.Store(false)
	d.positionMs.Store(0)
	d.sampleRate.Store(int64(sampleRate))
	d.channels.Store(int64(channels))

	d.trackWG.Add(1)
	go d.pump(ctx, src, track, sampleRate, channels, onPlayable, onTrackEnd)
	return nil
}

// pump encodes and paces PCM frames until ctx is cancelled (an explicit
// Stop(), whose caller is responsible for its own end-of-track signal) or
// src is exhausted on its own, in which case onTrackEnd fires exactly once
// before returning.
func (d *WebRTCDriver) pump(ctx context.Context, src io.Reader, track *pionwebrtc.TrackLocalStaticSample, sampleRate, channels int, onPlayable, onTrackEnd func()) {
	defer d.trackWG.Done()

	naturalEnd := func() {
		if onTrackEnd != nil {
			onTrackEnd()
		}
	}

	enc, err := opus.NewEncoder(OpusSampleRate, OpusChannels, opus.AppAudio)
	if err != nil {
		d.logger.Errorw("failed to create opus encoder", "error", err)
		return
	}

	frameBytes := (sampleRate * channels * 2 * OpusFrameDuration) / 1000
	if frameBytes <= 0 {
		frameBytes = sampleRate * channels * 2
	}
	pcmBuf := make([]byte, frameBytes)
	opusBuf := make([]byte, 4000)
	firstFrame := true
	ticker := time.NewTicker(OpusFrameDuration * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := io.ReadFull(src, pcmBuf)
		if n == 0 {
			naturalEnd()
			return
		}
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			d.logger.Errorw("filtered source read failed during playback", "error", err)
			return
		}

		for d.paused.Load() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Millisecond):
			}
		}

		// Pad a short final frame with silence so the encoder always gets
		// a full frame.
		clear(pcmBuf[n:])
		samples := bytesToInt16(pcmBuf)
		samples = applyVolume(samples, d.currentVolume())
		resampled := linearResample(samples, channels, sampleRate, OpusSampleRate)
		if channels == 1 {
			resampled = monoToStereo(resampled)
		}

		encodedLen, encErr := enc.Encode(resampled, opusBuf)
		if encErr != nil {
			d.logger.Errorw("opus encode failed", "error", encErr)
			return
		}

		sample := media.Sample{Data: append([]byte(nil), opusBuf[:encodedLen]...), Duration: OpusFrameDuration * time.Millisecond}
		if err := track.WriteSample(sample); err != nil {
			d.logger.Errorw("writing rtp sample failed", "error", err)
			return
		}

		if firstFrame {
			firstFrame = false
			if onPlayable != nil {
				onPlayable()
			}
		}
		d.positionMs.Add(OpusFrameDuration)

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			naturalEnd()
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (d *WebRTCDriver) currentVolume() float64 {
	v, _ := d.volume.Load().(float64)
	return v
}

func (d *WebRTCDriver) Stop() {
	d.mu.Lock()
	cancel := d.trackCancel
	d.trackCancel = nil
	d.mu.Unlock()
	if cancel != nil {
		cancel()
		d.trackWG.Wait()
	}
}

func (d *WebRTCDriver) NotifySeeked(byteOffset int64) {
	sampleRate := d.sampleRate.Load()
	channels := d.channels.Load()
	if sampleRate == 0 || channels == 0 {
		d.positionMs.Store(0)
		return
	}
	frame := (byteOffset - headerSkipBytes) / (2 * channels)
	if frame < 0 {
		frame = 0
	}
	d.positionMs.Store(frame * 1000 / sampleRate)
}

func (d *WebRTCDriver) Pause(paused bool) { d.paused.Store(paused) }

func (d *WebRTCDriver) SetVolume(v float64) { d.volume.Store(v) }

func (d *WebRTCDriver) PositionMs() int64 { return d.positionMs.Load() }

func (d *WebRTCDriver) Disconnect() {
	d.Stop()
	d.mu.Lock()
	pc := d.pc
	d.pc = nil
	d.localTrack = nil
	d.mu.Unlock()
	if pc != nil {
		_ = pc.Close()
	}
	d.fireDisconnect(CloseGraceful)
}

func bytesToInt16(buf []byte) []int16 {
	out := make([]int16, len(buf)/2)
	for i := range out {
		out[i] = int16(uint16(buf[i*2]) | uint16(buf[i*2+1])<<8)
	}
	return out
}

func applyVolume(samples []int16, v float64) []int16 {
	if v == 1.0 {
		return samples
	}
	out := make([]int16, len(samples))
	for i, s := range samples {
		scaled := float64(s) * v
		if scaled > 32767 {
			scaled = 32767
		} else if scaled < -32768 {
			scaled = -32768
		}
		out[i] = int16(scaled)
	}
	return out
}

func monoToStereo(samples []int16) []int16 {
	out := make([]int16, len(samples)*2)
	for i, s := range samples {
		out[i*2] = s
		out[i*2+1] = s
	}
	return out
}
