package source

import "encoding/binary"

// headerSize is the 44-byte synthetic linear-PCM container header prefixed
// to every filtered source's byte stream (§4.3 step 4). It mirrors a
// canonical WAV/RIFF fmt+data header, though the stream it precedes is not
// written to a finite file and therefore carries no final size: the
// "data" chunk length is set to the maximum representable value, the
// convention streaming WAV writers use when the total length is unknown
// up front.
const headerSize = 44

// buildHeader writes the 44-byte header for 16-bit signed little-endian PCM
// at the given sample rate and channel count.
func buildHeader(sampleRate, channels int) [headerSize]byte {
	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	var h [headerSize]byte
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], 0xFFFFFFFF)
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(h[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(h[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(h[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(h[34:36], bitsPerSample)
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], 0xFFFFFFFF)
	return h
}
