package tx

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jrwynneiii/ofdmtx/config"
	"github.com/jrwynneiii/ofdmtx/waveform"
	"github.com/racerxdl/segdsp/dsp"
	"github.com/racerxdl/segdsp/tools"
	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrSinkWrite wraps a failed sink write. Writes are never retried: the
// stream is real time and a resend of identical samples is meaningless.
var ErrSinkWrite = errors.New("sink write failed")

// Sink accepts finished interleaved CS16 chunks. Implemented by the
// SoapySDR radio and the file sink.
type Sink interface {
	Write(iq []int16, numSamples uint) (uint, error)
	Mute(numSamples uint) error
	Close()
}

// Transmitter runs the synchronous per-chunk pipeline: map payload
// symbols, synthesize OFDM symbols, shape, normalize, clip, quantize,
// write. One chunk is fully handed to the sink before the next begins,
// so sample timing stays monotonic and gap-free.
type Transmitter struct {
	Params *waveform.Params
	Plan   *waveform.SubcarrierPlan

	mapper *waveform.Mapper
	synth  *waveform.Synthesizer
	sink   Sink

	lowpass *dsp.FirFilter

	chunk   []complex64
	payload []complex64
	iq      []int16

	samplesSent int

	// MaxChunks stops the loop after that many chunks when positive;
	// zero streams until cancelled. Used by the file sink command.
	MaxChunks int

	// Monitor stats, read by the TUI refresh goroutine. All of them,
	// not just the spectrum, are guarded by FFTMutex.
	CurrentRMS  float64
	CurrentPAPR float64
	ChunksSent  int
	CurrentFFT  []float64
	DoFFT       bool
	FFTWorking  bool
	FFTMutex    sync.RWMutex
}

func New(p *waveform.Params, plan *waveform.SubcarrierPlan, sink Sink, conf config.TXConf) *Transmitter {
	rng := rand.New(rand.NewSource(p.Seed))

	t := &Transmitter{
		Params:  p,
		Plan:    plan,
		mapper:  waveform.NewMapper(p.Scheme, rng),
		synth:   waveform.NewSynthesizer(p, plan),
		sink:    sink,
		chunk:   make([]complex64, p.ChunkSamples()),
		payload: make([]complex64, len(plan.DataBins)),
		iq:      make([]int16, 2*p.ChunkSamples()),
		DoFFT:   conf.DoFFT,
	}

	if conf.LowpassCutoff > 0 {
		width := conf.LowpassTransition
		if width <= 0 {
			width = conf.LowpassCutoff / 10
		}
		log.Debugf("[tx] TX shaping lowpass: cutoff %f Hz, transition %f Hz", conf.LowpassCutoff, width)
		t.lowpass = dsp.MakeFirFilter(dsp.MakeLowPass(1, p.SampleRate, conf.LowpassCutoff, width))
	}
	return t
}

// Run streams chunks until the context is cancelled or a sink write
// fails. In either case exactly one all-zero symbol is written to mute
// the radio before the sink is released; a configuration that got this
// far can no longer fail, so only sink errors surface.
func (t *Transmitter) Run(ctx context.Context) error {
	defer t.muteAndClose()

	symbolLen := t.Params.SymbolLen()
	for {
		// Cancellation is polled once per chunk, never mid-chunk.
		if ctx.Err() != nil {
			log.Info("Stop requested, shutting down TX")
			return nil
		}
		if t.MaxChunks > 0 && t.ChunksSent >= t.MaxChunks {
			log.Infof("Wrote %d chunks, stopping", t.ChunksSent)
			return nil
		}

		for n := 0; n < t.Params.ChunkSymbols; n++ {
			t.mapper.Generate(t.payload)
			// Minimal phase-reference comb: pilots toggle +1/-1 on
			// successive symbols.
			pilot := complex(float32(1), 0)
			if n%2 == 1 {
				pilot = complex(float32(-1), 0)
			}
			if err := t.synth.Synthesize(t.payload, pilot, t.chunk[n*symbolLen:(n+1)*symbolLen]); err != nil {
				return err
			}
		}

		if t.lowpass != nil {
			copy(t.chunk, t.lowpass.Work(t.chunk))
		}

		waveform.NormalizeRMS(t.chunk, t.Params.TargetRMS)
		waveform.SoftClip(t.chunk, t.Params.SoftClipAlpha)
		waveform.Ramp(t.chunk, t.samplesSent, t.Params.RampSamples)

		t.updateStats()

		waveform.QuantizeCS16(t.chunk, t.iq)
		want := uint(len(t.chunk))
		sent, err := t.sink.Write(t.iq, want)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSinkWrite, err)
		}
		if sent < want {
			log.Warnf("[tx] short write: %d of %d samples", sent, want)
		}
		t.samplesSent += len(t.chunk)
		t.FFTMutex.Lock()
		t.ChunksSent++
		t.FFTMutex.Unlock()
	}
}

func (t *Transmitter) muteAndClose() {
	if err := t.sink.Mute(uint(t.Params.SymbolLen())); err != nil {
		log.Errorf("Mute write failed: %v", err)
	}
	t.sink.Close()
}

func (t *Transmitter) updateStats() {
	rms := waveform.RMS(t.chunk)
	peak := waveform.Peak(t.chunk)

	t.FFTMutex.Lock()
	t.CurrentRMS = rms
	t.CurrentPAPR = 20 * math.Log10((peak+1e-12)/(rms+1e-12))
	launchFFT := t.DoFFT && !t.FFTWorking
	t.FFTMutex.Unlock()

	if launchFFT {
		snapshot := make([]complex64, len(t.chunk))
		copy(snapshot, t.chunk)
		go t.doFFT(snapshot)
	}
}

// doFFT renders a decimated log-power spectrum of the outgoing chunk
// for the monitor plot.
func (t *Transmitter) doFFT(samples []complex64) {
	t.FFTMutex.Lock()
	t.FFTWorking = true
	t.FFTMutex.Unlock()

	input := make([]complex128, len(samples))
	for i, sample := range samples {
		input[i] = complex128(sample)
	}

	fft := fourier.NewCmplxFFT(len(input))
	coeff := fft.Coefficients(nil, input)

	step := len(coeff) / 256
	if step < 1 {
		step = 1
	}
	var output []float64
	for i := 0; i < len(coeff); i += step {
		v := tools.ComplexAbsSquared(complex64(coeff[fft.ShiftIdx(i)]))
		db := 10.0 * math.Log10(float64(v)+1e-20)
		output = append(output, db)
	}

	t.FFTMutex.Lock()
	t.CurrentFFT = output
	t.FFTMutex.Unlock()

	time.Sleep(500 * time.Millisecond)
	t.FFTMutex.Lock()
	t.FFTWorking = false
	t.FFTMutex.Unlock()
}
