package waveform

import (
	"math"
	"math/cmplx"

	"github.com/racerxdl/segdsp/tools"
)

// Epsilon floors for the degenerate all-zero chunk (a valid transient
// during shutdown mute). Degenerate input is never an error here.
const (
	rmsEpsilon  = 1e-12
	peakEpsilon = 1e-9
)

// RMS returns the root-mean-square magnitude over the buffer.
func RMS(buf []complex64) float64 {
	if len(buf) == 0 {
		return 0
	}
	var sum float64
	for _, v := range buf {
		sum += float64(tools.ComplexAbsSquared(v))
	}
	return math.Sqrt(sum / float64(len(buf)))
}

// Peak returns the largest sample magnitude in the buffer.
func Peak(buf []complex64) float64 {
	var peak float64
	for _, v := range buf {
		if m := float64(tools.ComplexAbsSquared(v)); m > peak {
			peak = m
		}
	}
	return math.Sqrt(peak)
}

// NormalizeRMS scales every sample so the buffer RMS equals target.
func NormalizeRMS(buf []complex64, target float64) {
	gain := complex(float32(target/(RMS(buf)+rmsEpsilon)), 0)
	for i := range buf {
		buf[i] *= gain
	}
}

// SoftClip compresses peaks with y = tanh(alpha*x/peak)/tanh(alpha) and
// then restores the pre-clip RMS, so average power is preserved while
// peak excursions shrink. The tanh is taken of the scaled complex sample
// itself, matching the reference waveform. The complex tanh has a pole
// at i*pi/2, so a near-peak sample with phase close to +/-90 degrees
// expands instead of compressing; the peak bound only holds for input
// whose phases stay away from the pole. alpha <= 0 is a pass-through.
func SoftClip(buf []complex64, alpha float64) {
	if alpha <= 0 {
		return
	}
	peak := Peak(buf) + peakEpsilon
	rmsBefore := RMS(buf) + rmsEpsilon
	drive := complex(alpha/peak, 0)
	norm := complex(math.Tanh(alpha), 0)

	for i, v := range buf {
		buf[i] = complex64(cmplx.Tanh(complex128(v) * drive) / norm)
	}

	gain := complex(float32((rmsBefore)/(RMS(buf)+rmsEpsilon)), 0)
	for i := range buf {
		buf[i] *= gain
	}
}

// Ramp applies a linear 0..1 gain across the first total samples of the
// stream; firstIndex is the absolute stream index of buf[0]. Samples at
// or past total are untouched.
func Ramp(buf []complex64, firstIndex, total int) {
	if total <= 0 || firstIndex >= total {
		return
	}
	for i := range buf {
		n := firstIndex + i
		if n >= total {
			break
		}
		buf[i] *= complex(float32(n)/float32(total), 0)
	}
}
