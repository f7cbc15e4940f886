package filter

import "math"

// Distortion is a sin+cos+tan waveshaper with per-term scale+offset and a
// global scale+offset (§4.1). Applied to samples normalised to [-1,1] and
// denormalised on the way out. All parameters accept any value (§3 table),
// so construction never fails.
type Distortion struct {
	SinOffset, SinScale float64
	CosOffset, CosScale float64
	TanOffset, TanScale float64
	Offset, Scale       float64
}

// identity values per the Lavalink-style distortion convention this system
// follows: unit scales, zero offsets leave the waveshaper's contribution at
// its additive baseline.
const (
	distortionIdentityScale  = 1.0
	distortionIdentityOffset = 0.0
)

func NewDistortion(sinOffset, sinScale, cosOffset, cosScale, tanOffset, tanScale, offset, scale float64) *Distortion {
	return &Distortion{
		SinOffset: sinOffset, SinScale: sinScale,
		CosOffset: cosOffset, CosScale: cosScale,
		TanOffset: tanOffset, TanScale: tanScale,
		Offset: offset, Scale: scale,
	}
}

func (d *Distortion) Process(samples []int16, sampleRate int) error {
	if err := checkEven("distortion", samples); err != nil {
		return err
	}
	if !d.IsActive() {
		return nil
	}
	const norm = float64(math.MaxInt16)
	for i, s := range samples {
		x := float64(s) / norm
		transformed := math.Sin(x*d.SinScale+d.SinOffset) +
			math.Cos(x*d.CosScale+d.CosOffset) +
			math.Tan(x*d.TanScale+d.TanOffset) +
			d.Offset
		out := transformed * d.Scale
		samples[i] = clampSample(out * norm)
	}
	return nil
}

func (d *Distortion) IsActive() bool {
	return diff(d.SinScale, distortionIdentityScale) > epsilon ||
		diff(d.CosScale, distortionIdentityScale) > epsilon ||
		diff(d.TanScale, distortionIdentityScale) > epsilon ||
		diff(d.Scale, distortionIdentityScale) > epsilon ||
		diff(d.SinOffset, distortionIdentityOffset) > epsilon ||
		diff(d.CosOffset, distortionIdentityOffset) > epsilon ||
		diff(d.TanOffset, distortionIdentityOffset) > epsilon ||
		diff(d.Offset, distortionIdentityOffset) > epsilon
}

func (d *Distortion) Reset()       {}
func (d *Distortion) Name() string { return "distortion" }
