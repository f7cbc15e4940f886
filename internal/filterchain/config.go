// Package filterchain composes the ordered DSP graph described in §4.2:
// volume, equalizer, timescale, tremolo, vibrato, rotation, distortion,
// karaoke, channel-mix, low-pass, rebuilt atomically from a configuration
// record each time the control path pushes an update.
package filterchain

// Config mirrors the REST filter-configuration payload (§3 table). Every
// field is a pointer so "missing section" (nil) is distinguishable from
// "present at identity values" — a present-but-identity section still
// constructs a (necessarily inactive) node, per §4.2.
type Config struct {
	Volume     *VolumeConfig
	Equalizer  []EqualizerBand
	Timescale  *TimescaleConfig
	Tremolo    *TremoloConfig
	Vibrato    *VibratoConfig
	Rotation   *RotationConfig
	Distortion *DistortionConfig
	Karaoke    *KaraokeConfig
	ChannelMix *ChannelMixConfig
	LowPass    *LowPassConfig
}

type VolumeConfig struct{ Multiplier float64 }

type EqualizerBand struct {
	Band int
	Gain float64
}

type TimescaleConfig struct{ Speed, Pitch, Rate float64 }

type TremoloConfig struct{ Frequency, Depth float64 }

type VibratoConfig struct{ Frequency, Depth float64 }

type RotationConfig struct{ RotationHz float64 }

type DistortionConfig struct {
	SinOffset, SinScale float64
	CosOffset, CosScale float64
	TanOffset, TanScale float64
	Offset, Scale       float64
}

type KaraokeConfig struct{ Level, MonoLevel float64 }

type ChannelMixConfig struct {
	LeftToLeft, LeftToRight, RightToLeft, RightToRight float64
}

type LowPassConfig struct{ Smoothing float64 }
