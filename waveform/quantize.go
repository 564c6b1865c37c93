package waveform

// QuantizeCS16 converts normalized complex samples to the interleaved
// 16-bit transport format the sink consumes: I then Q per sample, scaled
// by 32767, clamped to the signed 16-bit range, truncated toward zero.
// dst must hold 2*len(buf) values.
func QuantizeCS16(buf []complex64, dst []int16) {
	for i, v := range buf {
		dst[2*i] = clamp16(real(v) * 32767.0)
		dst[2*i+1] = clamp16(imag(v) * 32767.0)
	}
}

func clamp16(v float32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
