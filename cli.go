package main

var cli struct {
	Verbose bool `help:"Prints debug output by default"`
	Profile bool `help:"Output a pprof profile"`
	Probe   struct {
	} `cmd:"" help:"List the available radios and SoapySDR configuration"`
	Tx struct {
	} `cmd:"" help:"Stream the OFDM waveform through the SDR"`
	File struct {
		Out    string `arg:"" help:"Output path for the interleaved CS16 samples"`
		Chunks int    `default:"16" help:"Number of chunks to write"`
	} `cmd:"" help:"Write the waveform to a raw CS16 file instead of a radio"`
}
