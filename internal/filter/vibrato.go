package filter

import (
	"math"

	"github.com/ibukiaudio/ibuki/internal/ibukierr"
)

// vibratoDelayLen is the circular delay length in samples (§4.1: 1024-sample
// circular delay per channel). Allocated once at construction — filters never
// allocate in the hot path.
const vibratoDelayLen = 1024

// Vibrato is a delay-line LFO. Read index is
// writePos - (MAX_DELAY*depth*0.5)*(0.5+0.5*sin(phase)), linearly
// interpolated between adjacent delay slots (§4.1).
type Vibrato struct {
	Frequency float64
	Depth     float64

	phase    float64
	writePos [2]int
	delay    [2][vibratoDelayLen]float64
}

// NewVibrato validates frequency>0 and <=14, depth 0..1 (§3 table).
func NewVibrato(frequency, depth float64) (*Vibrato, error) {
	if frequency <= 0 || frequency > 14 {
		return nil, ibukierr.New(ibukierr.KindInvalidParameter, "vibrato frequency must be in (0, 14]")
	}
	if depth < 0 || depth > 1 {
		return nil, ibukierr.New(ibukierr.KindInvalidParameter, "vibrato depth out of range 0..1")
	}
	return &Vibrato{Frequency: frequency, Depth: depth}, nil
}

func (v *Vibrato) Process(samples []int16, sampleRate int) error {
	if err := checkEven("vibrato", samples); err != nil {
		return err
	}
	if !v.IsActive() || sampleRate <= 0 {
		return nil
	}
	step := 2 * math.Pi * v.Frequency / float64(sampleRate)
	for i := 0; i < len(samples); i += 2 {
		delaySamples := float64(vibratoDelayLen) * v.Depth * 0.5 * (0.5 + 0.5*math.Sin(v.phase))
		for ch := 0; ch < 2; ch++ {
			s := samples[i+ch]
			v.delay[ch][v.writePos[ch]] = float64(s)

			readPos := float64(v.writePos[ch]) - delaySamples
			for readPos < 0 {
				readPos += vibratoDelayLen
			}
			lo := int(readPos) % vibratoDelayLen
			hi := (lo + 1) % vibratoDelayLen
			frac := readPos - math.Floor(readPos)
			interp := v.delay[ch][lo]*(1-frac) + v.delay[ch][hi]*frac

			samples[i+ch] = clampSample(interp)
			v.writePos[ch] = (v.writePos[ch] + 1) % vibratoDelayLen
		}
		v.phase = wrapPhase(v.phase + step)
	}
	return nil
}

func (v *Vibrato) IsActive() bool { return v.Depth > epsilon }

// Reset zeroes the delay lines and the write cursor (§4.1, §4.3 invariant:
// DSP memory is zero whenever a seek completes).
func (v *Vibrato) Reset() {
	v.phase = 0
	v.writePos = [2]int{}
	v.delay = [2][vibratoDelayLen]float64{}
}

func (v *Vibrato) Name() string { return "vibrato" }
