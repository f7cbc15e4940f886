package filter

import (
	"math"

	"github.com/ibukiaudio/ibuki/internal/ibukierr"
)

// Tremolo is an amplitude LFO: modulation = 1 - depth*0.5*(1-sin(phase)),
// phase += 2*pi*freq/sampleRate, wrapping at 2*pi (§4.1).
type Tremolo struct {
	Frequency float64
	Depth     float64
	phase     float64
}

// NewTremolo validates frequency>0 and depth in 0..1 (§3 table).
func NewTremolo(frequency, depth float64) (*Tremolo, error) {
	if frequency <= 0 {
		return nil, ibukierr.New(ibukierr.KindInvalidParameter, "tremolo frequency must be > 0")
	}
	if depth < 0 || depth > 1 {
		return nil, ibukierr.New(ibukierr.KindInvalidParameter, "tremolo depth out of range 0..1")
	}
	return &Tremolo{Frequency: frequency, Depth: depth}, nil
}

func (t *Tremolo) Process(samples []int16, sampleRate int) error {
	if err := checkEven("tremolo", samples); err != nil {
		return err
	}
	if !t.IsActive() || sampleRate <= 0 {
		return nil
	}
	step := 2 * math.Pi * t.Frequency / float64(sampleRate)
	for i := 0; i < len(samples); i += 2 {
		modulation := 1 - t.Depth*0.5*(1-math.Sin(t.phase))
		samples[i] = clampSample(float64(samples[i]) * modulation)
		samples[i+1] = clampSample(float64(samples[i+1]) * modulation)
		t.phase = wrapPhase(t.phase + step)
	}
	return nil
}

func (t *Tremolo) IsActive() bool { return t.Depth > epsilon }
func (t *Tremolo) Reset()        { t.phase = 0 }
func (t *Tremolo) Name() string  { return "tremolo" }
