// Package filter implements the per-stream DSP nodes: stateless configuration
// turned into stateful filters that transform an interleaved stereo 16-bit
// PCM buffer in place. Every filter shares the same contract so the filter
// chain (internal/filterchain) can treat them uniformly.
package filter

import (
	"math"

	"github.com/ibukiaudio/ibuki/internal/ibukierr"
)

// epsilon below which a parameter is considered "at identity".
const epsilon = 1e-6

// Filter is the uniform contract every DSP node implements.
type Filter interface {
	// Process transforms samples in place. len(samples) must be even
	// (interleaved stereo); an odd length fails fast without mutating samples.
	Process(samples []int16, sampleRate int) error
	IsActive() bool
	Reset()
	Name() string
}

// checkEven validates the stereo-interleaving invariant shared by every filter.
func checkEven(name string, samples []int16) error {
	if len(samples)%2 != 0 {
		return ibukierr.New(ibukierr.KindBufferSizeMismatch, name+": odd-length stereo buffer")
	}
	return nil
}

// clampSample saturates a widened sample back to int16 range, never wrapping.
func clampSample(v float64) int16 {
	if v > float64(math.MaxInt16) {
		return math.MaxInt16
	}
	if v < float64(math.MinInt16) {
		return math.MinInt16
	}
	return int16(v)
}

// wrapPhase keeps an LFO phase accumulator inside [0, 2π).
func wrapPhase(phase float64) float64 {
	const twoPi = 2 * math.Pi
	for phase >= twoPi {
		phase -= twoPi
	}
	for phase < 0 {
		phase += twoPi
	}
	return phase
}
