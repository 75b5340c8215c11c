package diag

import "math"

// Wire scaling factors for fixed-point measurement values.
const (
	ratioScale = 65536.0           // eye pixels, 16.16 fixed point
	berScale   = 281474976710656.0 // bit error rates, 16.48 fixed point (2^48)
)

// hiLoUint64 reassembles a 64-bit counter transmitted as a pair of 32-bit
// low/high words.
func hiLoUint64(hi, lo uint32) uint64 {
	return uint64(hi)<<32 | uint64(lo)
}

// ratioPixel converts a ratio-mode eye pixel.
func ratioPixel(v uint32) float64 {
	return float64(v) / ratioScale
}

// rawPixel computes the error ratio of a raw-mode eye pixel. A zero sample
// count decodes to NaN: the hardware never measured that pixel.
func rawPixel(errCnt, sampleCnt uint64) float64 {
	if sampleCnt == 0 {
		return math.NaN()
	}
	return float64(errCnt) / float64(sampleCnt)
}

// berValue converts a fixed-point bit error rate.
func berValue(v uint64) float64 {
	return float64(v) / berScale
}
