package filter

import "github.com/ibukiaudio/ibuki/internal/ibukierr"

// Volume applies a linear gain multiplier on each sample.
// Active iff |multiplier - 1| > epsilon. Range: 0.0-5.0 (§3 table).
type Volume struct {
	Multiplier float64
}

// NewVolume validates the multiplier against the 0.0-5.0 range from §3.
func NewVolume(multiplier float64) (*Volume, error) {
	if multiplier < 0.0 || multiplier > 5.0 {
		return nil, ibukierr.New(ibukierr.KindInvalidParameter, "volume multiplier out of range 0.0-5.0")
	}
	return &Volume{Multiplier: multiplier}, nil
}

func (v *Volume) Process(samples []int16, sampleRate int) error {
	if err := checkEven("volume", samples); err != nil {
		return err
	}
	if !v.IsActive() {
		return nil
	}
	for i, s := range samples {
		samples[i] = clampSample(float64(s) * v.Multiplier)
	}
	return nil
}

func (v *Volume) IsActive() bool { return diff(v.Multiplier, 1.0) > epsilon }
func (v *Volume) Reset()         {}
func (v *Volume) Name() string   { return "volume" }

func diff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}
