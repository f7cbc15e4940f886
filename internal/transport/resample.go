package transport

// linearResample converts interleaved PCM between sample rates by linear
// interpolation per channel. The retrieval pack's resampler crate import
// names were not accompanied by their source, so this is a small
// self-contained stand-in grounded on the same "resample before Opus
// encode" step the teacher's streamer performs (see DESIGN.md).
func linearResample(pcm []int16, channels, fromRate, toRate int) []int16 {
	if fromRate == toRate || len(pcm) == 0 {
		out := make([]int16, len(pcm))
		copy(out, pcm)
		return out
	}
	framesIn := len(pcm) / channels
	framesOut := int(int64(framesIn) * int64(toRate) / int64(fromRate))
	if framesOut <= 0 {
		return nil
	}
	out := make([]int16, framesOut*channels)
	ratio := float64(framesIn-1) / float64(maxInt(framesOut-1, 1))
	for i := 0; i < framesOut; i++ {
		srcPos := float64(i) * ratio
		lo := int(srcPos)
		hi := lo + 1
		if hi >= framesIn {
			hi = framesIn - 1
		}
		frac := srcPos - float64(lo)
		for ch := 0; ch < channels; ch++ {
			a := float64(pcm[lo*channels+ch])
			b := float64(pcm[hi*channels+ch])
			out[i*channels+ch] = int16(a + (b-a)*frac)
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
