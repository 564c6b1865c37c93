package waveform

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/dsp/fourier"
)

func testParams(t *testing.T) (*Params, *SubcarrierPlan) {
	t.Helper()
	p := &Params{
		FFTSize:    64,
		CPLen:      16,
		UsedTones:  28,
		NumPilots:  6,
		Scheme:     QAM16,
		SampleRate: 102400,
	}
	plan, err := BuildPlan(p.FFTSize, p.UsedTones, 0, p.NumPilots)
	if err != nil {
		t.Fatal(err)
	}
	return p, plan
}

func randomPayload(t *testing.T, scheme Scheme, n int) []complex64 {
	t.Helper()
	buf := make([]complex64, n)
	NewMapper(scheme, rand.New(rand.NewSource(7))).Generate(buf)
	return buf
}

func TestSynthesizeCyclicPrefix(t *testing.T) {
	p, plan := testParams(t)
	s := NewSynthesizer(p, plan)

	dst := make([]complex64, s.SymbolLen())
	payload := randomPayload(t, p.Scheme, len(plan.DataBins))
	if err := s.Synthesize(payload, 1, dst); err != nil {
		t.Fatal(err)
	}

	// First L samples must equal the last L of the un-prefixed part.
	for i := 0; i < p.CPLen; i++ {
		if dst[i] != dst[p.FFTSize+i] {
			t.Fatalf("prefix sample %d = %v, body tail = %v", i, dst[i], dst[p.FFTSize+i])
		}
	}
}

func TestSynthesizeBinPlacement(t *testing.T) {
	p, plan := testParams(t)
	s := NewSynthesizer(p, plan)

	dst := make([]complex64, s.SymbolLen())
	payload := randomPayload(t, p.Scheme, len(plan.DataBins))
	pilot := complex(float32(-1), 0)
	if err := s.Synthesize(payload, pilot, dst); err != nil {
		t.Fatal(err)
	}

	// Forward transform of the body recovers the frequency vector: the
	// synthesizer divides by N and gonum's forward transform does not
	// normalize, so the round trip is the identity.
	body := make([]complex128, p.FFTSize)
	for i := 0; i < p.FFTSize; i++ {
		body[i] = complex128(dst[p.CPLen+i])
	}
	freq := fourier.NewCmplxFFT(p.FFTSize).Coefficients(nil, body)

	isData := make(map[int]int)
	for i, bin := range plan.DataBins {
		isData[bin] = i
	}
	isPilot := make(map[int]bool)
	for _, bin := range plan.PilotBins {
		isPilot[bin] = true
	}

	for bin := 0; bin < p.FFTSize; bin++ {
		got := freq[bin]
		switch {
		case isPilot[bin]:
			if cmplx.Abs(got-complex128(pilot)) > 1e-5 {
				t.Errorf("pilot bin %d = %v, want %v", bin, got, pilot)
			}
		default:
			if i, ok := isData[bin]; ok {
				if cmplx.Abs(got-complex128(payload[i])) > 1e-5 {
					t.Errorf("data bin %d = %v, want %v", bin, got, payload[i])
				}
			} else if cmplx.Abs(got) > 1e-5 {
				t.Errorf("unused bin %d carries energy: %v", bin, got)
			}
		}
	}
}

func TestSynthesizeRotator(t *testing.T) {
	p, plan := testParams(t)
	plain := NewSynthesizer(p, plan)

	shifted := *p
	shifted.FreqOffset = 2000
	rot := NewSynthesizer(&shifted, plan)

	payload := randomPayload(t, p.Scheme, len(plan.DataBins))
	a := make([]complex64, plain.SymbolLen())
	b := make([]complex64, rot.SymbolLen())
	if err := plain.Synthesize(payload, 1, a); err != nil {
		t.Fatal(err)
	}
	if err := rot.Synthesize(payload, 1, b); err != nil {
		t.Fatal(err)
	}

	for n := range b {
		phase := 2 * math.Pi * 2000 * float64(n) / p.SampleRate
		want := complex128(a[n]) * cmplx.Exp(complex(0, phase))
		if cmplx.Abs(complex128(b[n])-want) > 1e-5 {
			t.Fatalf("sample %d = %v, want %v", n, b[n], want)
		}
	}
}

func TestSynthesizeLengthChecks(t *testing.T) {
	p, plan := testParams(t)
	s := NewSynthesizer(p, plan)

	dst := make([]complex64, s.SymbolLen())
	if err := s.Synthesize(make([]complex64, 3), 1, dst); err == nil {
		t.Error("expected error for payload length mismatch")
	}
	payload := randomPayload(t, p.Scheme, len(plan.DataBins))
	if err := s.Synthesize(payload, 1, dst[:10]); err == nil {
		t.Error("expected error for short destination")
	}
}
