package filter

import "testing"

func TestEqualizerInactiveBandsBypassed(t *testing.T) {
	eq, err := NewEqualizer(map[int]float64{0: 0.5})
	if err != nil {
		t.Fatalf("NewEqualizer: %v", err)
	}
	eq.SetSampleRate(48000)
	for i, bq := range eq.bands {
		if i == 0 {
			if !bq.active {
				t.Fatal("band 0 should be active")
			}
			continue
		}
		if bq.active {
			t.Fatalf("band %d should be bypassed", i)
		}
	}
}

func TestEqualizerGainMapping(t *testing.T) {
	// gain=-0.25 maps to -1.5dB, gain=1.0 maps to 6dB (§8 boundary behaviour).
	lowGain := -0.25 * 6.0
	highGain := 1.0 * 6.0
	if lowGain != -1.5 {
		t.Fatalf("gain mapping wrong: %v", lowGain)
	}
	if highGain != 6.0 {
		t.Fatalf("gain mapping wrong: %v", highGain)
	}
}

func TestEqualizerRejectsOutOfRangeGain(t *testing.T) {
	if _, err := NewEqualizer(map[int]float64{0: 1.1}); err == nil {
		t.Fatal("expected InvalidParameter for gain > 1.0")
	}
	if _, err := NewEqualizer(map[int]float64{0: -0.3}); err == nil {
		t.Fatal("expected InvalidParameter for gain < -0.25")
	}
}

func TestEqualizerRejectsOutOfRangeBand(t *testing.T) {
	if _, err := NewEqualizer(map[int]float64{15: 0.1}); err == nil {
		t.Fatal("expected InvalidParameter for band > 14")
	}
}

func TestEqualizerEmptyIsInactiveIdentity(t *testing.T) {
	eq, _ := NewEqualizer(nil)
	eq.SetSampleRate(48000)
	if eq.IsActive() {
		t.Fatal("empty equalizer should be inactive")
	}
	samples := []int16{1000, -2000, 3000, -4000}
	orig := append([]int16(nil), samples...)
	if err := eq.Process(samples, 48000); err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i := range orig {
		if samples[i] != orig[i] {
			t.Fatalf("inactive chain mutated buffer")
		}
	}
}
