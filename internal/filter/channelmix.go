package filter

import "github.com/ibukiaudio/ibuki/internal/ibukierr"

// ChannelMix applies a 2x2 stereo matrix, each weight in [0,1] (§4.1).
// Identity is the unit matrix: LeftToLeft=1, RightToRight=1, cross-weights 0.
type ChannelMix struct {
	LeftToLeft, LeftToRight   float64
	RightToLeft, RightToRight float64
}

func NewChannelMix(leftToLeft, leftToRight, rightToLeft, rightToRight float64) (*ChannelMix, error) {
	for _, w := range []float64{leftToLeft, leftToRight, rightToLeft, rightToRight} {
		if w < 0 || w > 1 {
			return nil, ibukierr.New(ibukierr.KindInvalidParameter, "channel_mix weight out of range 0..1")
		}
	}
	return &ChannelMix{
		LeftToLeft: leftToLeft, LeftToRight: leftToRight,
		RightToLeft: rightToLeft, RightToRight: rightToRight,
	}, nil
}

func (c *ChannelMix) Process(samples []int16, sampleRate int) error {
	if err := checkEven("channel_mix", samples); err != nil {
		return err
	}
	if !c.IsActive() {
		return nil
	}
	for i := 0; i < len(samples); i += 2 {
		l, r := float64(samples[i]), float64(samples[i+1])
		outL := l*c.LeftToLeft + r*c.RightToLeft
		outR := l*c.LeftToRight + r*c.RightToRight
		samples[i] = clampSample(outL)
		samples[i+1] = clampSample(outR)
	}
	return nil
}

func (c *ChannelMix) IsActive() bool {
	return diff(c.LeftToLeft, 1) > epsilon || diff(c.RightToRight, 1) > epsilon ||
		diff(c.LeftToRight, 0) > epsilon || diff(c.RightToLeft, 0) > epsilon
}

func (c *ChannelMix) Reset()       {}
func (c *ChannelMix) Name() string { return "channel_mix" }
