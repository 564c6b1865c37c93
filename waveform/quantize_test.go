package waveform

import "testing"

func TestQuantizeInterleaving(t *testing.T) {
	buf := []complex64{complex(1, 0.5), complex(-0.5, -1)}
	dst := make([]int16, 4)
	QuantizeCS16(buf, dst)

	want := []int16{32767, 16383, -16383, -32767}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], want[i])
		}
	}
}

func TestQuantizeSaturation(t *testing.T) {
	buf := []complex64{complex(2, -2), complex(1.0001, -1.0001)}
	dst := make([]int16, 4)
	QuantizeCS16(buf, dst)

	// Saturate at the rails, never wrap.
	want := []int16{32767, -32768, 32767, -32768}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], want[i])
		}
	}
}

func TestQuantizeZero(t *testing.T) {
	buf := make([]complex64, 8)
	dst := make([]int16, 16)
	QuantizeCS16(buf, dst)
	for i, v := range dst {
		if v != 0 {
			t.Errorf("dst[%d] = %d, want 0", i, v)
		}
	}
}
