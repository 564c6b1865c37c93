package waveform

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"strings"
)

// ErrInvalidConfig is returned for any configuration rejected at setup time.
// Nothing in this package fails mid-stream.
var ErrInvalidConfig = errors.New("invalid configuration")

// Scheme selects the payload constellation.
type Scheme int

const (
	BPSK Scheme = iota
	QPSK
	PSK8
	PSK32
	QAM16
	QAM64
)

// ParseScheme resolves a modulation name from the config file.
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToUpper(name) {
	case "BPSK":
		return BPSK, nil
	case "QPSK":
		return QPSK, nil
	case "8PSK":
		return PSK8, nil
	case "32PSK":
		return PSK32, nil
	case "16QAM", "16-QAM":
		return QAM16, nil
	case "64QAM", "64-QAM":
		return QAM64, nil
	}
	return 0, fmt.Errorf("%w: unsupported modulation %q", ErrInvalidConfig, name)
}

func (s Scheme) String() string {
	switch s {
	case BPSK:
		return "BPSK"
	case QPSK:
		return "QPSK"
	case PSK8:
		return "8PSK"
	case PSK32:
		return "32PSK"
	case QAM16:
		return "16QAM"
	case QAM64:
		return "64QAM"
	}
	return "Unknown"
}

// BitsPerSymbol returns the number of payload bits one constellation
// point carries.
func (s Scheme) BitsPerSymbol() int {
	switch s {
	case BPSK:
		return 1
	case QPSK:
		return 2
	case PSK8:
		return 3
	case PSK32:
		return 5
	case QAM16:
		return 4
	case QAM64:
		return 6
	}
	return 0
}

// Order returns the constellation size M.
func (s Scheme) Order() int {
	return 1 << uint(s.BitsPerSymbol())
}

// Point maps an index in [0, M) to a unit-average-power constellation
// point. PSK schemes place points on the unit circle; square QAM uses
// odd-integer levels divided by sqrt(2*(M-1)/3), so the average power of
// all M points is 1.
func (s Scheme) Point(idx int) complex64 {
	m := s.Order()
	switch s {
	case BPSK:
		return complex(float32(2*(idx&1)-1), 0)
	case QPSK, PSK8, PSK32:
		phase := 2 * math.Pi * float64(idx%m) / float64(m)
		return complex64(cmplx.Exp(complex(0, phase)))
	case QAM16, QAM64:
		k := int(math.Sqrt(float64(m)))
		i := idx % k
		q := idx / k
		scale := math.Sqrt(2 * float64(m-1) / 3)
		return complex(
			float32(float64(2*i-(k-1))/scale),
			float32(float64(2*q-(k-1))/scale),
		)
	}
	return 0
}

// Mapper draws random constellation points for the payload bins. The
// generator is owned by the caller and advanced monotonically; there is
// no global randomness anywhere in the pipeline.
type Mapper struct {
	scheme Scheme
	rng    *rand.Rand
}

func NewMapper(scheme Scheme, rng *rand.Rand) *Mapper {
	return &Mapper{scheme: scheme, rng: rng}
}

func (m *Mapper) Scheme() Scheme {
	return m.scheme
}

// Generate fills dst with random unit-average-power symbols.
func (m *Mapper) Generate(dst []complex64) {
	order := m.scheme.Order()
	for i := range dst {
		dst[i] = m.scheme.Point(m.rng.Intn(order))
	}
}
