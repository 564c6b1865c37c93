package waveform

import (
	"fmt"
	"math"

	"github.com/jrwynneiii/ofdmtx/config"
)

// Params is the fully resolved transmitter configuration. It is computed
// once by Derive before the first chunk and never mutated afterward.
type Params struct {
	FFTSize    int
	CPLen      int
	CPFraction float64
	EdgeGuard  int

	UsedTones  int
	NumPayload int
	NumPilots  int

	Scheme Scheme

	SampleRate        float64 // host complex sample rate (sps)
	SubcarrierSpacing float64 // delta-f (Hz)
	SymbolPeriod      float64 // seconds, without CP
	TotalSymbolPeriod float64 // seconds, with CP

	FreqOffset float64 // baseband rotator frequency (Hz), 0 disables

	ChunkSymbols  int
	TargetRMS     float64
	SoftClipAlpha float64
	RampSamples   int
	Seed          int64
}

// Derive resolves the mutually dependent OFDM parameters from whichever
// subset the config supplies, mirroring the precedence of the reference
// transmitter: explicit sample rate beats symbol duration, explicit
// used-tone count beats payload+pilot counts, which beat a target
// occupied bandwidth. Inconsistent payload+pilot totals are reconciled
// by clamping the payload count, never rejected.
func Derive(ofdm config.OFDMConf, tx config.TXConf) (*Params, error) {
	p := &Params{
		FFTSize:       ofdm.FFTSize,
		EdgeGuard:     ofdm.EdgeGuard,
		FreqOffset:    ofdm.FreqOffsetKHz * 1e3,
		ChunkSymbols:  tx.ChunkSymbols,
		TargetRMS:     tx.Scale,
		SoftClipAlpha: tx.SoftClipAlpha,
		RampSamples:   tx.RampSamples,
		Seed:          tx.Seed,
	}
	if p.FFTSize <= 0 {
		return nil, fmt.Errorf("%w: fft size %d must be positive", ErrInvalidConfig, ofdm.FFTSize)
	}
	if p.ChunkSymbols <= 0 {
		p.ChunkSymbols = 16
	}
	if p.TargetRMS <= 0 {
		p.TargetRMS = 0.30
	}
	if p.Seed == 0 {
		p.Seed = 12345
	}

	scheme, err := ParseScheme(ofdm.Modulation)
	if err != nil {
		return nil, err
	}
	p.Scheme = scheme

	// Cyclic prefix: explicit sample count wins over the fraction.
	switch {
	case ofdm.CPLen > 0:
		p.CPLen = ofdm.CPLen
	case ofdm.CPFraction > 0:
		p.CPLen = int(math.Round(ofdm.CPFraction * float64(p.FFTSize)))
	}
	if p.CPLen < 0 || p.CPLen > p.FFTSize {
		return nil, fmt.Errorf("%w: cyclic prefix %d outside [0, %d]", ErrInvalidConfig, p.CPLen, p.FFTSize)
	}
	p.CPFraction = float64(p.CPLen) / float64(p.FFTSize)

	// Sample rate and subcarrier spacing.
	switch {
	case ofdm.SampleRate > 0:
		p.SampleRate = ofdm.SampleRate
		p.SubcarrierSpacing = p.SampleRate / float64(p.FFTSize)
		p.SymbolPeriod = 1.0 / p.SubcarrierSpacing
	case ofdm.SymbolDurationMs > 0:
		p.SymbolPeriod = ofdm.SymbolDurationMs * 1e-3
		p.SubcarrierSpacing = 1.0 / p.SymbolPeriod
		p.SampleRate = p.SubcarrierSpacing * float64(p.FFTSize)
	default:
		return nil, fmt.Errorf("%w: need sample_rate or symbol_duration_ms", ErrInvalidConfig)
	}
	p.TotalSymbolPeriod = p.SymbolPeriod * (1.0 + p.CPFraction)

	// Occupied tone budget.
	switch {
	case ofdm.UsedTones > 0:
		p.UsedTones = ofdm.UsedTones
		p.NumPilots = ofdm.NumPilots
		if ofdm.NumPayload > 0 {
			p.NumPayload = ofdm.NumPayload
		} else {
			p.NumPayload = p.UsedTones - p.NumPilots
		}
		if p.NumPayload+p.NumPilots != p.UsedTones {
			// Reconcile by clamping payload to fill the remainder.
			p.NumPayload = max(0, p.UsedTones-p.NumPilots)
		}
	case ofdm.NumPayload > 0:
		p.NumPayload = ofdm.NumPayload
		p.NumPilots = ofdm.NumPilots
		p.UsedTones = p.NumPayload + p.NumPilots
	case ofdm.OccupiedBWKHz > 0:
		fromBW := int(math.Round(ofdm.OccupiedBWKHz * 1e3 / p.SubcarrierSpacing))
		p.UsedTones = max(2, fromBW-fromBW%2)
		p.NumPilots = min(6, p.UsedTones/4)
		p.NumPayload = p.UsedTones - p.NumPilots
	default:
		return nil, fmt.Errorf("%w: need used_tones, num_payload or occupied_bw_khz", ErrInvalidConfig)
	}

	if p.UsedTones%2 != 0 {
		return nil, fmt.Errorf("%w: used tones %d must be even", ErrInvalidConfig, p.UsedTones)
	}
	if maxUsed := p.FFTSize - 2 - 2*p.EdgeGuard; p.UsedTones > maxUsed {
		return nil, fmt.Errorf("%w: %d used tones exceed capacity %d", ErrInvalidConfig, p.UsedTones, maxUsed)
	}
	return p, nil
}

// SymbolLen is the extended symbol length N+L.
func (p *Params) SymbolLen() int {
	return p.FFTSize + p.CPLen
}

// ChunkSamples is the number of complex samples per chunk.
func (p *Params) ChunkSamples() int {
	return p.ChunkSymbols * p.SymbolLen()
}

// RawBitRate is the payload bit rate ignoring CP overhead, for the given
// actual payload bin count. Informational only.
func (p *Params) RawBitRate(payloadBins int) float64 {
	return float64(payloadBins*p.Scheme.BitsPerSymbol()) * p.SubcarrierSpacing
}

// NetBitRate is the payload bit rate including CP overhead.
func (p *Params) NetBitRate(payloadBins int) float64 {
	return float64(payloadBins*p.Scheme.BitsPerSymbol()) / p.TotalSymbolPeriod
}
