package filterchain

import (
	"sync"

	"github.com/ibukiaudio/ibuki/internal/filter"
	"github.com/ibukiaudio/ibuki/internal/ibukierr"
)

// Chain is the ordered, optional-node composition described in §4.2. It is
// shared between the filtered source (writer, one buffer at a time) and the
// player command path (writer on config updates) behind an exclusive lock
// with the buffer period as its bound — never held across a suspension
// point (§5 Shared-resource policy).
//
// Declaration order is fixed and matches §4.2: volume, equalizer, timescale,
// tremolo, vibrato, rotation, distortion, karaoke, channel-mix, low-pass.
type Chain struct {
	mu         sync.Mutex
	enabled    bool
	sampleRate int

	volume     *filter.Volume
	equalizer  *filter.Equalizer
	timescale  *filter.Timescale
	tremolo    *filter.Tremolo
	vibrato    *filter.Vibrato
	rotation   *filter.Rotation
	distortion *filter.Distortion
	karaoke    *filter.Karaoke
	channelMix *filter.ChannelMix
	lowPass    *filter.LowPass
}

// New builds a chain from a Config, constructing one node per present
// section. Any node rejecting its parameters fails the whole rebuild (§4.2),
// so the caller never observes a half-built chain.
func New(cfg Config) (*Chain, error) {
	c := &Chain{enabled: true}

	if cfg.Volume != nil {
		v, err := filter.NewVolume(cfg.Volume.Multiplier)
		if err != nil {
			return nil, err
		}
		c.volume = v
	}
	if len(cfg.Equalizer) > 0 {
		bands := make(map[int]float64, len(cfg.Equalizer))
		for _, b := range cfg.Equalizer {
			bands[b.Band] = b.Gain
		}
		eq, err := filter.NewEqualizer(bands)
		if err != nil {
			return nil, err
		}
		c.equalizer = eq
	}
	if cfg.Timescale != nil {
		ts, err := filter.NewTimescale(cfg.Timescale.Speed, cfg.Timescale.Pitch, cfg.Timescale.Rate)
		if err != nil {
			return nil, err
		}
		c.timescale = ts
	}
	if cfg.Tremolo != nil {
		tr, err := filter.NewTremolo(cfg.Tremolo.Frequency, cfg.Tremolo.Depth)
		if err != nil {
			return nil, err
		}
		c.tremolo = tr
	}
	if cfg.Vibrato != nil {
		vb, err := filter.NewVibrato(cfg.Vibrato.Frequency, cfg.Vibrato.Depth)
		if err != nil {
			return nil, err
		}
		c.vibrato = vb
	}
	if cfg.Rotation != nil {
		c.rotation = filter.NewRotation(cfg.Rotation.RotationHz)
	}
	if cfg.Distortion != nil {
		d := cfg.Distortion
		c.distortion = filter.NewDistortion(d.SinOffset, d.SinScale, d.CosOffset, d.CosScale, d.TanOffset, d.TanScale, d.Offset, d.Scale)
	}
	if cfg.Karaoke != nil {
		k, err := filter.NewKaraoke(cfg.Karaoke.Level, cfg.Karaoke.MonoLevel)
		if err != nil {
			return nil, err
		}
		c.karaoke = k
	}
	if cfg.ChannelMix != nil {
		m := cfg.ChannelMix
		cm, err := filter.NewChannelMix(m.LeftToLeft, m.LeftToRight, m.RightToLeft, m.RightToRight)
		if err != nil {
			return nil, err
		}
		c.channelMix = cm
	}
	if cfg.LowPass != nil {
		lp, err := filter.NewLowPass(cfg.LowPass.Smoothing)
		if err != nil {
			return nil, err
		}
		c.lowPass = lp
	}
	return c, nil
}

// Empty returns an all-sections-absent chain: the identity function on any
// even-length buffer (§8 round-trip law).
func Empty() *Chain {
	c, _ := New(Config{})
	return c
}

// nodes returns the present nodes in declaration order.
func (c *Chain) nodes() []filter.Filter {
	var out []filter.Filter
	if c.volume != nil {
		out = append(out, c.volume)
	}
	if c.equalizer != nil {
		out = append(out, c.equalizer)
	}
	if c.timescale != nil {
		out = append(out, c.timescale)
	}
	if c.tremolo != nil {
		out = append(out, c.tremolo)
	}
	if c.vibrato != nil {
		out = append(out, c.vibrato)
	}
	if c.rotation != nil {
		out = append(out, c.rotation)
	}
	if c.distortion != nil {
		out = append(out, c.distortion)
	}
	if c.karaoke != nil {
		out = append(out, c.karaoke)
	}
	if c.channelMix != nil {
		out = append(out, c.channelMix)
	}
	if c.lowPass != nil {
		out = append(out, c.lowPass)
	}
	return out
}

// Process runs every present-and-active node in declaration order. Empty
// buffers are a no-op. SetEnabled(false) short-circuits the whole chain.
func (c *Chain) Process(samples []int16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(samples) == 0 {
		return nil
	}
	if len(samples)%2 != 0 {
		return ibukierr.New(ibukierr.KindBufferSizeMismatch, "filter chain: odd-length stereo buffer")
	}
	if !c.enabled {
		return nil
	}
	for _, n := range c.nodes() {
		if !n.IsActive() {
			continue
		}
		if err := n.Process(samples, c.sampleRate); err != nil {
			return err
		}
	}
	return nil
}

// HasActiveFilters returns true iff at least one present node's IsActive()
// is true.
func (c *Chain) HasActiveFilters() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.nodes() {
		if n.IsActive() {
			return true
		}
	}
	return false
}

// ResetState propagates Reset to every present node (delay-holding nodes in
// particular), so no DSP memory leaks across a seek (§4.3 invariant).
func (c *Chain) ResetState() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.nodes() {
		n.Reset()
	}
}

// SetSampleRate updates the field read by Process. Expected to be called
// exactly once, at probe time, before the first Process call (§4.2).
func (c *Chain) SetSampleRate(sampleRate int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sampleRate = sampleRate
}

// SetEnabled toggles the chain's top-level switch.
func (c *Chain) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}
