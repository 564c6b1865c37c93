package waveform

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/racerxdl/segdsp/tools"
)

func noisyChunk(n int, seed int64) []complex64 {
	rng := rand.New(rand.NewSource(seed))
	buf := make([]complex64, n)
	for i := range buf {
		buf[i] = complex(float32(rng.NormFloat64()), float32(rng.NormFloat64()))
	}
	return buf
}

func TestNormalizeRMS(t *testing.T) {
	buf := noisyChunk(4096, 1)
	NormalizeRMS(buf, 0.3)
	if got := RMS(buf); math.Abs(got-0.3) > 1e-4 {
		t.Errorf("RMS after normalize = %f, want 0.3", got)
	}

	NormalizeRMS(buf, 1.0)
	if got := RMS(buf); math.Abs(got-1.0) > 1e-4 {
		t.Errorf("RMS after renormalize = %f, want 1.0", got)
	}
}

func TestNormalizeRMSZeroChunk(t *testing.T) {
	// All-zero chunks are a valid transient (shutdown mute); the
	// epsilon floor must keep the output finite.
	buf := make([]complex64, 128)
	NormalizeRMS(buf, 0.3)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}

	SoftClip(buf, 1.5)
	for i, v := range buf {
		m := tools.ComplexAbsSquared(v)
		if math.IsNaN(float64(m)) || math.IsInf(float64(m), 0) {
			t.Fatalf("sample %d not finite after soft clip: %v", i, v)
		}
	}
}

func TestSoftClipPreservesRMS(t *testing.T) {
	buf := noisyChunk(4096, 2)
	NormalizeRMS(buf, 0.3)
	rmsBefore := RMS(buf)

	SoftClip(buf, 1.5)

	if got := RMS(buf); math.Abs(got-rmsBefore) > 1e-3 {
		t.Errorf("RMS after clip = %f, want %f", got, rmsBefore)
	}
}

// Peak compression is only guaranteed for input whose phases stay away
// from the tanh pole at i*pi/2, so the contraction check runs on a
// real-valued chunk. On the real axis tanh(alpha*u)/tanh(alpha) >= u
// for u in [0,1], the RMS restore gain is <= 1, and the peak can only
// shrink.
func TestSoftClipReducesPeak(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	buf := make([]complex64, 4096)
	for i := range buf {
		buf[i] = complex(float32(rng.NormFloat64()), 0)
	}
	NormalizeRMS(buf, 0.3)
	peakBefore := Peak(buf)

	SoftClip(buf, 1.5)

	if got := Peak(buf); got > peakBefore+1e-6 {
		t.Errorf("peak after clip = %f, exceeds pre-clip peak %f", got, peakBefore)
	}
}

// The nonlinearity is applied to the complex sample itself, not to its
// magnitude. A peak-magnitude sample at 90 degrees lands near the tanh
// pole and expands: tanh(1.5i) = i*tan(1.5), so with the buffer
// {1, i} the clipped-and-restored output is {0.0906, 1.4113i}. A
// magnitude-domain limiter would map both inputs to the same magnitude.
func TestSoftClipComplexDirect(t *testing.T) {
	buf := []complex64{1, complex(0, 1)}
	SoftClip(buf, 1.5)

	want := []complex64{complex(0.0906, 0), complex(0, 1.4113)}
	for i := range want {
		if d := cmplx.Abs(complex128(buf[i] - want[i])); d > 2e-3 {
			t.Errorf("sample %d = %v, want %v", i, buf[i], want[i])
		}
	}
	if got := RMS(buf); math.Abs(got-1.0) > 1e-3 {
		t.Errorf("RMS after clip = %f, want 1.0", got)
	}
	if got := Peak(buf); got <= 1.0 {
		t.Errorf("peak after clip = %f, expected expansion past the pre-clip peak", got)
	}
}

func TestSoftClipDisabled(t *testing.T) {
	buf := noisyChunk(256, 3)
	want := make([]complex64, len(buf))
	copy(want, buf)

	SoftClip(buf, 0)
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("sample %d changed with alpha=0", i)
		}
	}

	SoftClip(buf, -1)
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("sample %d changed with alpha<0", i)
		}
	}
}

func TestRamp(t *testing.T) {
	buf := make([]complex64, 50)
	for i := range buf {
		buf[i] = 1
	}
	Ramp(buf, 0, 100)
	if buf[0] != 0 {
		t.Errorf("buf[0] = %v, want 0", buf[0])
	}
	if got := real(buf[10]); math.Abs(float64(got)-0.1) > 1e-6 {
		t.Errorf("buf[10] = %v, want 0.1", got)
	}

	// Second chunk continues where the first left off.
	buf2 := make([]complex64, 60)
	for i := range buf2 {
		buf2[i] = 1
	}
	Ramp(buf2, 50, 100)
	if got := real(buf2[0]); math.Abs(float64(got)-0.5) > 1e-6 {
		t.Errorf("buf2[0] = %v, want 0.5", got)
	}
	// Past the ramp the signal is untouched.
	if buf2[55] != 1 {
		t.Errorf("buf2[55] = %v, want 1", buf2[55])
	}

	// Disabled ramp leaves everything alone.
	buf3 := []complex64{1, 1}
	Ramp(buf3, 0, 0)
	if buf3[0] != 1 || buf3[1] != 1 {
		t.Errorf("ramp with total=0 modified samples: %v", buf3)
	}
}
