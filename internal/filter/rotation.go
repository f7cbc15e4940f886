package filter

import "math"

// Rotation is a stereo-pan LFO: pan_left = cos(phase+pi/4), pan_right =
// sin(phase); input is collapsed to mid and re-panned. Phase advances by
// 2*pi*rotation_hz/sampleRate (§4.1). rotation_hz may be any value, so
// construction never fails.
type Rotation struct {
	RotationHz float64
	phase      float64
}

func NewRotation(rotationHz float64) *Rotation {
	return &Rotation{RotationHz: rotationHz}
}

func (r *Rotation) Process(samples []int16, sampleRate int) error {
	if err := checkEven("rotation", samples); err != nil {
		return err
	}
	if !r.IsActive() || sampleRate <= 0 {
		return nil
	}
	step := 2 * math.Pi * r.RotationHz / float64(sampleRate)
	for i := 0; i < len(samples); i += 2 {
		mid := (float64(samples[i]) + float64(samples[i+1])) / 2
		panLeft := math.Cos(r.phase + math.Pi/4)
		panRight := math.Sin(r.phase)
		samples[i] = clampSample(mid * panLeft)
		samples[i+1] = clampSample(mid * panRight)
		r.phase = wrapPhase(r.phase + step)
	}
	return nil
}

func (r *Rotation) IsActive() bool { return diff(r.RotationHz, 0) > epsilon }
func (r *Rotation) Reset()         { r.phase = 0 }
func (r *Rotation) Name() string   { return "rotation" }
