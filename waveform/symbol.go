package waveform

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Synthesizer turns one set of payload symbols into an extended
// time-domain OFDM symbol: bin placement, inverse transform with 1/N
// scaling, cyclic prefix, optional baseband frequency-offset rotation.
type Synthesizer struct {
	plan    *SubcarrierPlan
	fftSize int
	cpLen   int
	fft     *fourier.CmplxFFT
	freq    []complex128
	time    []complex128
	rotator []complex64
}

func NewSynthesizer(p *Params, plan *SubcarrierPlan) *Synthesizer {
	s := &Synthesizer{
		plan:    plan,
		fftSize: p.FFTSize,
		cpLen:   p.CPLen,
		fft:     fourier.NewCmplxFFT(p.FFTSize),
		freq:    make([]complex128, p.FFTSize),
		time:    make([]complex128, p.FFTSize),
	}
	if p.FreqOffset != 0 {
		s.rotator = make([]complex64, p.SymbolLen())
		for n := range s.rotator {
			phase := 2 * math.Pi * p.FreqOffset * float64(n) / p.SampleRate
			s.rotator[n] = complex64(cmplx.Exp(complex(0, phase)))
		}
	}
	return s
}

// SymbolLen is the extended output length N+L.
func (s *Synthesizer) SymbolLen() int {
	return s.fftSize + s.cpLen
}

// Synthesize writes one extended symbol into dst. data carries one
// payload symbol per data bin; pilot is repeated on every pilot bin.
// DC and all unused bins stay exactly zero.
func (s *Synthesizer) Synthesize(data []complex64, pilot complex64, dst []complex64) error {
	if len(data) != len(s.plan.DataBins) {
		return fmt.Errorf("payload length %d does not match %d data bins", len(data), len(s.plan.DataBins))
	}
	if len(dst) < s.SymbolLen() {
		return fmt.Errorf("destination length %d below symbol length %d", len(dst), s.SymbolLen())
	}

	for i := range s.freq {
		s.freq[i] = 0
	}
	for i, bin := range s.plan.DataBins {
		s.freq[bin] = complex128(data[i])
	}
	for _, bin := range s.plan.PilotBins {
		s.freq[bin] = complex128(pilot)
	}

	// gonum's inverse transform is unnormalized; divide by N to match
	// the energy-normalized ifft the waveform is defined against.
	td := s.fft.Sequence(s.time, s.freq)
	scale := 1.0 / float64(s.fftSize)

	for i := 0; i < s.cpLen; i++ {
		v := td[s.fftSize-s.cpLen+i]
		dst[i] = complex64(complex(real(v)*scale, imag(v)*scale))
	}
	for i, v := range td {
		dst[s.cpLen+i] = complex64(complex(real(v)*scale, imag(v)*scale))
	}

	if s.rotator != nil {
		for i := 0; i < s.SymbolLen(); i++ {
			dst[i] *= s.rotator[i]
		}
	}
	return nil
}
