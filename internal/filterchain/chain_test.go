package filterchain

import "testing"

func TestEmptyChainIsIdentity(t *testing.T) {
	c := Empty()
	c.SetSampleRate(48000)
	samples := []int16{100, -200, 300, -400}
	orig := append([]int16(nil), samples...)
	if err := c.Process(samples); err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i := range orig {
		if samples[i] != orig[i] {
			t.Fatalf("empty chain mutated buffer: %v vs %v", samples, orig)
		}
	}
	if c.HasActiveFilters() {
		t.Fatal("empty chain should have no active filters")
	}
}

func TestChainVolumeOnly(t *testing.T) {
	c, err := New(Config{Volume: &VolumeConfig{Multiplier: 0.5}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.SetSampleRate(48000)
	samples := []int16{10000, -10000, 30000, -30000}
	if err := c.Process(samples); err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := []int16{5000, -5000, 15000, -15000}
	for i := range want {
		if samples[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d", i, samples[i], want[i])
		}
	}
	if !c.HasActiveFilters() {
		t.Fatal("volume=0.5 should be active")
	}
}

func TestChainDeterministicAcrossRuns(t *testing.T) {
	cfg := Config{Vibrato: &VibratoConfig{Frequency: 5, Depth: 0.5}}
	a, _ := New(cfg)
	b, _ := New(cfg)
	a.SetSampleRate(48000)
	b.SetSampleRate(48000)

	input := make([]int16, 256)
	for i := range input {
		input[i] = int16((i * 37) % 2000)
	}

	bufA := append([]int16(nil), input...)
	bufB := append([]int16(nil), input...)

	if err := a.Process(bufA); err != nil {
		t.Fatalf("Process a: %v", err)
	}
	if err := b.Process(bufB); err != nil {
		t.Fatalf("Process b: %v", err)
	}
	for i := range bufA {
		if bufA[i] != bufB[i] {
			t.Fatalf("non-deterministic at %d: %d vs %d", i, bufA[i], bufB[i])
		}
	}
}

func TestChainRejectsInvalidSectionFailsWholeRebuild(t *testing.T) {
	_, err := New(Config{
		Volume:  &VolumeConfig{Multiplier: 0.5},
		Karaoke: &KaraokeConfig{Level: 2.0},
	})
	if err == nil {
		t.Fatal("expected rebuild to fail when any section rejects its parameters")
	}
}

func TestChainOddBufferFails(t *testing.T) {
	c := Empty()
	c.SetSampleRate(48000)
	if err := c.Process([]int16{1, 2, 3}); err == nil {
		t.Fatal("expected BufferSizeMismatch for odd-length buffer")
	}
}
