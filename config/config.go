package config

type RadioConf struct {
	Driver         string  `koanf:"driver"`
	Address        string  `koanf:"address"`
	Channel        uint    `koanf:"channel"`
	Gain           float64 `koanf:"gain"`
	LOFrequency    float64 `koanf:"lo_hz"`
	NCOFrequency   float64 `koanf:"nco_hz"`
	NCODownconvert bool    `koanf:"nco_downconvert"`
	TXBandwidth    float64 `koanf:"tx_lpf_bw"`
	SendTimeoutUs  uint    `koanf:"send_timeout_us"`
}

type OFDMConf struct {
	FFTSize          int     `koanf:"fft_size"`
	CPLen            int     `koanf:"cp_len"`
	CPFraction       float64 `koanf:"cp_fraction"`
	EdgeGuard        int     `koanf:"edge_guard"`
	UsedTones        int     `koanf:"used_tones"`
	NumPayload       int     `koanf:"num_payload"`
	NumPilots        int     `koanf:"num_pilots"`
	OccupiedBWKHz    float64 `koanf:"occupied_bw_khz"`
	SampleRate       float64 `koanf:"sample_rate"`
	SymbolDurationMs float64 `koanf:"symbol_duration_ms"`
	Modulation       string  `koanf:"modulation"`
	FreqOffsetKHz    float64 `koanf:"freq_offset_khz"`
}

type TXConf struct {
	Scale             float64 `koanf:"scale"`
	SoftClipAlpha     float64 `koanf:"softclip_alpha"`
	ChunkSymbols      int     `koanf:"chunk_symbols"`
	Seed              int64   `koanf:"seed"`
	RampSamples       int     `koanf:"ramp_samples"`
	LowpassCutoff     float64 `koanf:"lowpass_cutoff"`
	LowpassTransition float64 `koanf:"lowpass_transition_width"`
	DoFFT             bool    `koanf:"do_fft"`
}

type TuiConf struct {
	Enabled         bool `koanf:"enabled"`
	RefreshMs       int  `koanf:"refresh_ms"`
	EnableLogOutput bool `koanf:"enable_log_output"`
}
