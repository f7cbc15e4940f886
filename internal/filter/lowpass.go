package filter

import "github.com/ibukiaudio/ibuki/internal/ibukierr"

// LowPass is a one-pole IIR smoothing filter, per channel:
//
//	y[n] = y[n-1] + (1/smoothing) * (x[n] - y[n-1])
//
// smoothing = 1.0 is the identity (coefficient = 1, §8 boundary behaviour).
type LowPass struct {
	Smoothing float64
	memory    [2]float64
}

// NewLowPass validates smoothing >= 1.0 (§3 table).
func NewLowPass(smoothing float64) (*LowPass, error) {
	if smoothing < 1.0 {
		return nil, ibukierr.New(ibukierr.KindInvalidParameter, "low_pass smoothing must be >= 1.0")
	}
	return &LowPass{Smoothing: smoothing}, nil
}

func (lp *LowPass) Process(samples []int16, sampleRate int) error {
	if err := checkEven("low_pass", samples); err != nil {
		return err
	}
	if !lp.IsActive() {
		return nil
	}
	coeff := 1.0 / lp.Smoothing
	for i := 0; i < len(samples); i += 2 {
		for ch := 0; ch < 2; ch++ {
			x := float64(samples[i+ch])
			y := lp.memory[ch] + coeff*(x-lp.memory[ch])
			lp.memory[ch] = y
			samples[i+ch] = clampSample(y)
		}
	}
	return nil
}

func (lp *LowPass) IsActive() bool { return diff(lp.Smoothing, 1.0) > epsilon }

// Reset zeroes the per-channel memory.
func (lp *LowPass) Reset() { lp.memory = [2]float64{} }
func (lp *LowPass) Name() string { return "low_pass" }
