package audio

import "math"

// floatBufferTo16BitLE converts a []float32 buffer to 16-bit
// little-endian PCM, appending to dst so callers can reuse capacity
// across render blocks.
func floatBufferTo16BitLE(src []float32, dst []byte) []byte {
	for _, v := range src {
		var s int16
		if v < -1.0 {
			s = -math.MaxInt16
		} else if v > 1.0 {
			s = math.MaxInt16
		} else {
			s = int16(v * math.MaxInt16)
		}
		dst = append(dst, byte(s), byte(s>>8))
	}
	return dst
}
