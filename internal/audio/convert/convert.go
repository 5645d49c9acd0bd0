// Package convert turns native float32 PCM capture chunks into the
// interleaved little-endian int16 wire format AudioData carries, with linear
// resampling when the capture rate differs from the negotiated session rate.
package convert

import "math"

// FloatToInt16LE converts interleaved float32 samples in [-1, 1] to
// interleaved little-endian int16 bytes, clamping out-of-range input rather
// than wrapping.
func FloatToInt16LE(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := float64(s) * 32767.0
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		iv := int16(math.Round(v))
		out[i*2] = byte(iv)
		out[i*2+1] = byte(iv >> 8)
	}
	return out
}

// Resample performs linear interpolation resampling of interleaved int16 PCM
// from srcRate to dstRate, channel count held constant. Returns samples
// unchanged if the rates already match.
func Resample(samples []int16, channels, srcRate, dstRate int) []int16 {
	if srcRate <= 0 || dstRate <= 0 || srcRate == dstRate || channels <= 0 {
		return samples
	}

	frames := len(samples) / channels
	if frames == 0 {
		return samples
	}

	dstFrames := int(int64(frames) * int64(dstRate) / int64(srcRate))
	if dstFrames < 1 {
		dstFrames = 1
	}

	out := make([]int16, dstFrames*channels)
	ratio := float64(frames-1) / float64(maxInt(dstFrames-1, 1))

	for i := 0; i < dstFrames; i++ {
		srcPos := float64(i) * ratio
		lo := int(srcPos)
		hi := lo + 1
		if hi >= frames {
			hi = frames - 1
		}
		frac := srcPos - float64(lo)

		for c := 0; c < channels; c++ {
			a := float64(samples[lo*channels+c])
			b := float64(samples[hi*channels+c])
			out[i*channels+c] = int16(a + (b-a)*frac)
		}
	}
	return out
}

// Int16ToLE packs interleaved int16 samples into interleaved little-endian
// bytes.
func Int16ToLE(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
