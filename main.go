package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/jrwynneiii/ofdmtx/config"
	"github.com/jrwynneiii/ofdmtx/radio"
	"github.com/jrwynneiii/ofdmtx/tui"
	"github.com/jrwynneiii/ofdmtx/tx"
	"github.com/jrwynneiii/ofdmtx/waveform"

	"github.com/knadh/koanf/parsers/hcl"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var configFile = koanf.New(".")

func getConfigPath() string {
	paths := []string{"/etc/ofdmtx/config.hcl", "~/.config/ofdmtx/config.hcl", "./config.hcl"}
	for _, path := range paths {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			log.Infof("Found config file: %s", path)
			return path
		}
	}
	log.Info("Config file not found!")
	return ""
}

func loadConfig() (config.RadioConf, config.OFDMConf, config.TXConf, config.TuiConf) {
	if err := configFile.Load(file.Provider(getConfigPath()), hcl.Parser(true)); err != nil {
		log.Errorf("Could not read config file: %v", err)
		log.Error("Attempting to use environment variables")
		configFile.Load(env.Provider("", env.Opt{
			Prefix: "OFDMTX_",
			TransformFunc: func(k, v string) (string, any) {
				key := strings.ToLower(strings.TrimPrefix(k, "OFDMTX_"))
				k = strings.Replace(key, "_", ".", 1)
				fmt.Printf("Found config env var: %s=%v\n", k, v)
				return k, v
			},
		}), nil)
	}

	var radioDef config.RadioConf
	var ofdmDef config.OFDMConf
	var txDef config.TXConf
	var tuiDef config.TuiConf
	configFile.Unmarshal("radio", &radioDef)
	configFile.Unmarshal("ofdm", &ofdmDef)
	configFile.Unmarshal("tx", &txDef)
	configFile.Unmarshal("tui", &tuiDef)

	log.Debugf("Found radio definition: %##v", radioDef)
	log.Debugf("Found ofdm definition: %##v", ofdmDef)
	log.Debugf("Found tx definition: %##v", txDef)
	return radioDef, ofdmDef, txDef, tuiDef
}

func buildTransmitter(params *waveform.Params, txDef config.TXConf, sink tx.Sink) (*tx.Transmitter, error) {
	plan, err := waveform.BuildPlan(params.FFTSize, params.UsedTones, params.EdgeGuard, params.NumPilots)
	if err != nil {
		return nil, err
	}
	return tx.New(params, plan, sink, txDef), nil
}

func logWaveform(t *tx.Transmitter) {
	p := t.Params
	payload := len(t.Plan.DataBins)
	log.Infof("OFDM config: N=%d, CP=%d (%.3f of N), df=%.3f kHz, Tsym(noCP)=%.3f ms, Tsym=%.3f ms",
		p.FFTSize, p.CPLen, p.CPFraction, p.SubcarrierSpacing/1e3, p.SymbolPeriod*1e3, p.TotalSymbolPeriod*1e3)
	log.Infof("Mapping: used=%d (payload=%d, pilots=%d), edgeGuard=%d, DC unused",
		t.Plan.UsedTones(), payload, len(t.Plan.PilotBins), p.EdgeGuard)
	log.Infof("Rates: raw(no-CP)=%.3f kb/s, net(with-CP)=%.3f kb/s, mod=%s",
		p.RawBitRate(payload)/1e3, p.NetBitRate(payload)/1e3, p.Scheme)
}

func main() {
	log.Info("Starting ofdmtx")
	flags := kong.Parse(&cli)
	if cli.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	if cli.Profile {
		prof, err := os.Create("./cpu.pprof")
		if err != nil {
			panic(err)
		}
		pprof.StartCPUProfile(prof)
		defer pprof.StopCPUProfile()
	}

	switch flags.Command() {
	case "probe":
		radio.LogAllSoapySDRDevices()

	case "tx":
		radioDef, ofdmDef, txDef, tuiDef := loadConfig()

		params, err := waveform.Derive(ofdmDef, txDef)
		if err != nil {
			log.Fatalf("Bad configuration: %v", err)
		}

		r := radio.New(radioDef, params.SampleRate, params.SymbolLen())
		transmitter, err := buildTransmitter(params, txDef, r)
		if err != nil {
			log.Fatalf("Bad configuration: %v", err)
		}
		logWaveform(transmitter)
		log.Infof("Transmitting at ~%.6f MHz (fs=%.6f Msps). Ctrl+C to stop.",
			r.CenterFrequency()/1e6, params.SampleRate/1e6)

		r.Connect()

		// The signal handler only cancels the context; the loop polls
		// it once per chunk and mutes the radio on its way out.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if tuiDef.Enabled {
			errs := make(chan error, 1)
			go func() { errs <- transmitter.Run(ctx) }()
			tui.StartUI(transmitter, r.CenterFrequency(), true, tuiDef)
			stop()
			if err := <-errs; err != nil {
				log.Fatalf("TX stopped: %v", err)
			}
		} else if err := transmitter.Run(ctx); err != nil {
			log.Fatalf("TX stopped: %v", err)
		}

	case "file <out>":
		_, ofdmDef, txDef, _ := loadConfig()

		params, err := waveform.Derive(ofdmDef, txDef)
		if err != nil {
			log.Fatalf("Bad configuration: %v", err)
		}
		sink, err := radio.NewFileSink(cli.File.Out)
		if err != nil {
			log.Fatalf("Could not open output file: %v", err)
		}
		transmitter, err := buildTransmitter(params, txDef, sink)
		if err != nil {
			log.Fatalf("Bad configuration: %v", err)
		}
		transmitter.MaxChunks = cli.File.Chunks
		logWaveform(transmitter)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := transmitter.Run(ctx); err != nil {
			log.Fatalf("File write stopped: %v", err)
		}

	default:
		log.Info("Command not recognized")
	}
}
