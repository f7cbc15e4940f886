package filter

import (
	"math"

	"github.com/ibukiaudio/ibuki/internal/ibukierr"
)

// BandCenters are the 15 fixed peaking-EQ centre frequencies in Hz (§4.1).
var BandCenters = [15]float64{
	25, 40, 63, 100, 160, 250, 400, 630, 1000, 1600, 2500, 4000, 6300, 10000, 16000,
}

// biquad holds five pre-computed coefficients and two pairs of two-sample
// delay registers (one pair per stereo channel), per §3.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	active             bool
	// x1,x2,y1,y2 per channel: index 0 = left, 1 = right.
	x1, x2, y1, y2 [2]float64
}

func (bq *biquad) reset() {
	bq.x1, bq.x2, bq.y1, bq.y2 = [2]float64{}, [2]float64{}, [2]float64{}, [2]float64{}
}

// apply runs one channel's sample through the biquad difference equation.
func (bq *biquad) apply(ch int, x float64) float64 {
	y := bq.b0*x + bq.b1*bq.x1[ch] + bq.b2*bq.x2[ch] - bq.a1*bq.y1[ch] - bq.a2*bq.y2[ch]
	bq.x2[ch] = bq.x1[ch]
	bq.x1[ch] = x
	bq.y2[ch] = bq.y1[ch]
	bq.y1[ch] = y
	return y
}

// Equalizer is a 15-band peaking EQ. A config gain of g maps to g*6dB (§4.1);
// bands whose |gain| <= epsilon are bypassed entirely, which is the
// measurable performance contract §4.1 calls out.
type Equalizer struct {
	gains  [15]float64 // raw config gains, -0.25..1.0
	bands  [15]biquad
	sample int
}

// NewEqualizer validates each band gain against -0.25..1.0 (§3 table).
// Missing bands (not present in the map) default to 0 (identity).
func NewEqualizer(bandGains map[int]float64) (*Equalizer, error) {
	eq := &Equalizer{}
	for band, gain := range bandGains {
		if band < 0 || band > 14 {
			return nil, ibukierr.New(ibukierr.KindInvalidParameter, "equalizer band out of range 0..14")
		}
		if gain < -0.25 || gain > 1.0 {
			return nil, ibukierr.New(ibukierr.KindInvalidParameter, "equalizer gain out of range -0.25..1.0")
		}
		eq.gains[band] = gain
	}
	return eq, nil
}

// SetSampleRate (re)computes biquad coefficients for the given sample rate.
// Must be called before the first Process, per the filter chain contract.
func (eq *Equalizer) SetSampleRate(sampleRate int) {
	eq.sample = sampleRate
	for i := range eq.gains {
		eq.bands[i] = makeBand(sampleRate, BandCenters[i], eq.gains[i])
	}
}

// makeBand computes the peaking-EQ biquad coefficients for one band, Q=1.0,
// gain in dB derived from the config gain (gain_db = g * 6).
func makeBand(sampleRate int, centre, configGain float64) biquad {
	active := diff(configGain, 0) > epsilon
	gainDB := configGain * 6.0
	const q = 1.0

	if sampleRate <= 0 {
		sampleRate = 48000
	}
	w0 := 2 * math.Pi * centre / float64(sampleRate)
	alpha := math.Sin(w0) / (2 * q)
	a := math.Pow(10, gainDB/40)

	cosW0 := math.Cos(w0)
	b0 := 1 + alpha*a
	b1 := -2 * cosW0
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosW0
	a2 := 1 - alpha/a

	return biquad{
		b0:     b0 / a0,
		b1:     b1 / a0,
		b2:     b2 / a0,
		a1:     a1 / a0,
		a2:     a2 / a0,
		active: active,
	}
}

func (eq *Equalizer) Process(samples []int16, sampleRate int) error {
	if err := checkEven("equalizer", samples); err != nil {
		return err
	}
	if sampleRate != eq.sample {
		eq.SetSampleRate(sampleRate)
	}
	for i := 0; i < len(samples); i += 2 {
		l, r := float64(samples[i]), float64(samples[i+1])
		for b := range eq.bands {
			bq := &eq.bands[b]
			if !bq.active {
				continue
			}
			l = bq.apply(0, l)
			r = bq.apply(1, r)
		}
		samples[i] = clampSample(l)
		samples[i+1] = clampSample(r)
	}
	return nil
}

func (eq *Equalizer) IsActive() bool {
	for _, g := range eq.gains {
		if diff(g, 0) > epsilon {
			return true
		}
	}
	return false
}

func (eq *Equalizer) Reset() {
	for i := range eq.bands {
		eq.bands[i].reset()
	}
}

func (eq *Equalizer) Name() string { return "equalizer" }
