package filter

import "github.com/ibukiaudio/ibuki/internal/ibukierr"

// Karaoke attenuates the mid/side decomposition of a stereo signal (§4.1):
//
//	mid  = (L+R)/2
//	side = (L-R)/2
//	out_L = mid*(1-level) + side*mono_level
//	out_R = mid*(1-level) - side*mono_level
type Karaoke struct {
	Level     float64
	MonoLevel float64
}

// NewKaraoke validates level and mono_level in 0..1 (§3 table).
func NewKaraoke(level, monoLevel float64) (*Karaoke, error) {
	if level < 0 || level > 1 {
		return nil, ibukierr.New(ibukierr.KindInvalidParameter, "karaoke level out of range 0..1")
	}
	if monoLevel < 0 || monoLevel > 1 {
		return nil, ibukierr.New(ibukierr.KindInvalidParameter, "karaoke mono_level out of range 0..1")
	}
	return &Karaoke{Level: level, MonoLevel: monoLevel}, nil
}

func (k *Karaoke) Process(samples []int16, sampleRate int) error {
	if err := checkEven("karaoke", samples); err != nil {
		return err
	}
	if !k.IsActive() {
		return nil
	}
	for i := 0; i < len(samples); i += 2 {
		l, r := float64(samples[i]), float64(samples[i+1])
		mid := (l + r) / 2
		side := (l - r) / 2
		outL := mid*(1-k.Level) + side*k.MonoLevel
		outR := mid*(1-k.Level) - side*k.MonoLevel
		samples[i] = clampSample(outL)
		samples[i+1] = clampSample(outR)
	}
	return nil
}

// IsActive: the formula's fixed point is level=0, mono_level=1 — there
// out_L=mid+side=L and out_R=mid-side=R, the true identity transform.
func (k *Karaoke) IsActive() bool {
	return k.Level > epsilon || diff(k.MonoLevel, 1.0) > epsilon
}
func (k *Karaoke) Reset()         {}
func (k *Karaoke) Name() string   { return "karaoke" }
