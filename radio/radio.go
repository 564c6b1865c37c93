package radio

// #cgo CFLAGS: -g -Wall
// #cgo LDFLAGS: -lSoapySDR
import (
	"github.com/charmbracelet/log"
	"github.com/jrwynneiii/ofdmtx/config"

	"github.com/pothosware/go-soapy-sdr/pkg/device"
	"github.com/pothosware/go-soapy-sdr/pkg/modules"
	"github.com/pothosware/go-soapy-sdr/pkg/sdrlogger"
	"github.com/pothosware/go-soapy-sdr/pkg/version"
)

// Radio is a SoapySDR transmit sink. It consumes interleaved CS16
// samples, one chunk per Write, with a bounded timeout.
type Radio struct {
	Driver         string
	Address        string
	SampleRate     float64
	LOFrequency    float64
	NCOFrequency   float64
	NCODownconvert bool
	Bandwidth      float64
	Gain           float64
	//Private:
	channel   uint
	timeoutUs uint
	args      map[string]string
	device    *device.SDRDevice
	stream    *device.SDRStreamCS16
	buffers   [][]int16
	mute      []int16
}

func InitSoapySDR() {
	log.Debugf("Using SoapySDR versions: ABI: %s API: %s Lib: %s", version.GetABIVersion(), version.GetAPIVersion(), version.GetLibVersion())
	log.Debugf("SoapySDR modules root path: %v", modules.GetRootPath())

	searchPaths := modules.ListSearchPaths()
	if len(searchPaths) > 0 {
		for i, searchPath := range searchPaths {
			log.Debugf("Search path #%d: %v", i, searchPath)
		}
	} else {
		log.Debug("Search paths: [none]")
	}

	modulesFound := modules.ListModules()
	if len(modulesFound) > 0 {
		for _, module := range modulesFound {
			moduleVersion := modules.GetModuleVersion(module)
			if len(moduleVersion) == 0 {
				moduleVersion = "[None]"
			}
			log.Debugf("Found SoapySDR module: %v, version: %v", module, moduleVersion)
		}
	} else {
		log.Debug("No SoapySDR modules found")
	}
	sdrlogger.SetLogLevel(sdrlogger.Error)
}

func LogAllSoapySDRDevices() {
	// List Soapy library information
	log.Infof("Using SoapySDR versions: ABI: %s API: %s Lib: %s", version.GetABIVersion(), version.GetAPIVersion(), version.GetLibVersion())
	log.Infof("SoapySDR modules root path: %v", modules.GetRootPath())

	modulesFound := modules.ListModules()
	if len(modulesFound) > 0 {
		for _, module := range modulesFound {
			moduleVersion := modules.GetModuleVersion(module)
			if len(moduleVersion) == 0 {
				moduleVersion = "[None]"
			}
			log.Infof("Found SoapySDR module: %v, version: %v", module, moduleVersion)
		}
	} else {
		log.Info("No SoapySDR modules found")
	}

	sdrlogger.SetLogLevel(sdrlogger.Error)

	// Find all our devices and list info
	devices := device.Enumerate(nil)
	log.Infof("Found %d devices", len(devices))
	args := make([]map[string]string, len(devices))
	for idx, dev := range devices {
		args[idx] = map[string]string{"driver": dev["driver"]}
	}
	if devs, err := device.MakeList(args); err == nil {
		for idx, dev := range devs {
			log.Infof("Driver: %s", args[idx]["driver"])
			LogAvailSettings(dev)
		}
	} else {
		log.Fatalf("SoapySDR could not open devices: %v", err)
	}
}

func LogAvailSettings(dev *device.SDRDevice) {
	log.Infof("Current settings:")
	settings := dev.GetSettingInfo()
	if len(settings) > 0 {
		for _, setting := range settings {
			log.Infof("\t- %s: %v", setting.Key, setting.Value)
		}
	}

	numChannels := dev.GetNumChannels(device.DirectionTX)
	log.Info("TX channel info:")
	for channel := uint(0); channel < numChannels; channel++ {
		log.Infof("Channel %d:", channel)
		log.Infof("\tAvailable sample rates:")
		log.Infof("\t\t- %v", dev.GetSampleRate(device.DirectionTX, channel))
		for _, sampleRateRange := range dev.GetSampleRateRange(device.DirectionTX, channel) {
			log.Infof("\t\t- %v", sampleRateRange.ToString())
		}
		log.Infof("\tIQ Sample Types: %v", dev.GetStreamFormats(device.DirectionTX, channel))
	}
}

func New(conf config.RadioConf, sampleRate float64, symbolLen int) *Radio {
	log.Debug("Initing SoapySDR")
	InitSoapySDR()

	timeout := conf.SendTimeoutUs
	if timeout == 0 {
		timeout = 1_000_000
	}

	r := Radio{
		Driver:         conf.Driver,
		Address:        conf.Address,
		SampleRate:     sampleRate,
		LOFrequency:    conf.LOFrequency,
		NCOFrequency:   conf.NCOFrequency,
		NCODownconvert: conf.NCODownconvert,
		Bandwidth:      conf.TXBandwidth,
		Gain:           conf.Gain,
		channel:        conf.Channel,
		timeoutUs:      timeout,
		buffers:        make([][]int16, 1),
		mute:           make([]int16, 2*symbolLen),
	}
	return &r
}

func (r *Radio) Connect() {
	r.args = make(map[string]string)
	r.args["driver"] = r.Driver
	if r.Driver == "rtltcp" {
		r.args["rtltcp"] = r.Address
	}
	var err error
	if r.device == nil {
		if r.device, err = device.Make(r.args); err != nil {
			log.Fatalf("Could not create SoapySDR device! %s", err.Error())
		}
	}

	log.Debugf("Setting sample rate to %f", r.SampleRate)
	if err := r.device.SetSampleRate(device.DirectionTX, r.channel, r.SampleRate); err != nil {
		log.Fatalf("Could not set sample rate! %s", err.Error())
	}

	if r.Bandwidth > 0 {
		log.Debugf("Setting TX LPF bandwidth to %f", r.Bandwidth)
		if err := r.device.SetBandwidth(device.DirectionTX, r.channel, r.Bandwidth); err != nil {
			log.Fatalf("Could not set TX bandwidth! %s", err.Error())
		}
	}

	log.Debugf("Setting TX gain to %f", r.Gain)
	if err := r.device.SetGain(device.DirectionTX, r.channel, r.Gain); err != nil {
		log.Fatalf("Could not set TX gain! %s", err.Error())
	}

	// The LO sits on the RF component; the NCO shifts the effective
	// center away from the LO, same chain as the carrier test scripts.
	log.Debugf("Setting RF LO to %f", r.LOFrequency)
	if err := r.device.SetFrequencyComponent(device.DirectionTX, r.channel, "RF", r.LOFrequency, nil); err != nil {
		log.Fatalf("Could not set RF LO! %s", err.Error())
	}
	if r.NCOFrequency != 0 {
		bb := r.NCOFrequency
		if r.NCODownconvert {
			bb = -bb
		}
		log.Debugf("Setting BB NCO to %f", bb)
		if err := r.device.SetFrequencyComponent(device.DirectionTX, r.channel, "BB", bb, nil); err != nil {
			log.Fatalf("Could not set BB NCO! %s", err.Error())
		}
	}

	log.Debugf("Initialized device: %v", r.Driver)
	if r.Driver != "rtltcp" {
		LogAvailSettings(r.device)
	}

	log.Debug("Creating the CS16 TX stream")
	if r.stream, err = r.device.SetupSDRStreamCS16(device.DirectionTX, []uint{r.channel}, nil); err != nil {
		log.Fatalf("Could not setup TX stream! %s", err.Error())
	}

	log.Debug("Activating TX stream")
	if err := r.stream.Activate(0, 0, 0); err != nil {
		log.Fatalf("Could not activate the TX stream! %s", err.Error())
	}
}

// CenterFrequency is the effective RF center after the NCO shift.
func (r *Radio) CenterFrequency() float64 {
	if r.NCODownconvert {
		return r.LOFrequency - r.NCOFrequency
	}
	return r.LOFrequency + r.NCOFrequency
}

// Write sends numSamples complex samples (2*numSamples int16 values) to
// the device and reports how many were accepted.
func (r *Radio) Write(iq []int16, numSamples uint) (uint, error) {
	flags := make([]int, 1)
	r.buffers[0] = iq
	written, err := r.stream.Write(r.buffers, numSamples, flags, 0, r.timeoutUs)
	if err != nil {
		return written, err
	}
	log.Debugf("[radio] wrote %d of %d samples", written, numSamples)
	return written, nil
}

// Mute sends numSamples zero samples so the radio stops emitting energy.
func (r *Radio) Mute(numSamples uint) error {
	if int(2*numSamples) > len(r.mute) {
		r.mute = make([]int16, 2*numSamples)
	}
	_, err := r.Write(r.mute[:2*numSamples], numSamples)
	return err
}

func (r *Radio) Close() {
	log.Debug("Deactivating TX stream...")
	if r.stream != nil {
		if err := r.stream.Deactivate(0, 0); err != nil {
			log.Errorf("Could not deactivate the TX stream! %s", err.Error())
		}
		log.Debug("Closing TX stream...")
		if err := r.stream.Close(); err != nil {
			log.Errorf("Could not close the TX stream! %s", err.Error())
		}
	}
}
