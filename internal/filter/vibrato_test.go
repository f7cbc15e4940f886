package filter

import "testing"

func TestVibratoDepthZeroIsIdentity(t *testing.T) {
	if _, err := NewVibrato(5.0, 0); err != nil {
		t.Fatalf("NewVibrato: %v", err)
	}
	v, _ := NewVibrato(5.0, 0)
	if v.IsActive() {
		t.Fatal("depth=0 should be inactive")
	}
}

func TestVibratoRejectsFrequencyOutOfRange(t *testing.T) {
	if _, err := NewVibrato(0, 0.5); err == nil {
		t.Fatal("expected InvalidParameter for frequency<=0")
	}
	if _, err := NewVibrato(14.1, 0.5); err == nil {
		t.Fatal("expected InvalidParameter for frequency>14")
	}
}

func TestVibratoResetZeroesDelayAndCursor(t *testing.T) {
	v, _ := NewVibrato(5.0, 0.5)
	samples := make([]int16, 64)
	for i := range samples {
		samples[i] = int16(i * 100)
	}
	if err := v.Process(samples, 48000); err != nil {
		t.Fatalf("Process: %v", err)
	}
	v.Reset()
	if v.writePos != ([2]int{}) {
		t.Fatal("reset did not zero write cursor")
	}
	if v.phase != 0 {
		t.Fatal("reset did not zero phase")
	}
}

func TestVibratoDoubleResetIsReset(t *testing.T) {
	v, _ := NewVibrato(5.0, 0.5)
	samples := make([]int16, 16)
	_ = v.Process(samples, 48000)
	v.Reset()
	first := v.delay
	v.Reset()
	if v.delay != first {
		t.Fatal("reset . reset should equal reset")
	}
}
