package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagSamples     = flag.Int("samples", -1, "MSAA sample count for eye render targets (0 disables)")
	flagNoModels    = flag.Bool("no-device-models", false, "Do not render tracked device models")
	flagControllers = flag.Int("controllers", -1, "Number of simulated controllers")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSamples >= 0 {
		cfg.Graphics.MultiSamples = int32(*flagSamples)
	}
	if *flagNoModels {
		cfg.VR.ShowDeviceModels = false
	}
	if *flagControllers >= 0 {
		cfg.VR.SimControllers = *flagControllers
	}
}
