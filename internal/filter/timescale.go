package filter

import "github.com/ibukiaudio/ibuki/internal/ibukierr"

// Timescale represents playback speed/pitch/rate (§3 table, each 0.1..3.0).
//
// The in-place buffer contract (§4.1) forbids true time-stretching without
// pitch change: a faithful implementation cannot change the buffer length in
// this chain. Per the design note in §9/Open Question 1, this filter is a
// documented no-op at any parameters — it only reports activity so the
// chain's has_active_filters() and the REST surface can see the requested
// parameters — and never mutates samples. A buffer-resizing chain variant
// implementing WSOLA/phase-vocoder time-stretch is left as the extension
// point §9 describes.
type Timescale struct {
	Speed, Pitch, Rate float64
}

// NewTimescale validates each component is in 0.1..3.0 (§3 table).
func NewTimescale(speed, pitch, rate float64) (*Timescale, error) {
	for _, v := range []float64{speed, pitch, rate} {
		if v < 0.1 || v > 3.0 {
			return nil, ibukierr.New(ibukierr.KindInvalidParameter, "timescale component out of range 0.1..3.0")
		}
	}
	return &Timescale{Speed: speed, Pitch: pitch, Rate: rate}, nil
}

func (t *Timescale) Process(samples []int16, sampleRate int) error {
	return checkEven("timescale", samples)
}

func (t *Timescale) IsActive() bool {
	return diff(t.Speed, 1.0) > epsilon || diff(t.Pitch, 1.0) > epsilon || diff(t.Rate, 1.0) > epsilon
}

func (t *Timescale) Reset()       {}
func (t *Timescale) Name() string { return "timescale" }
