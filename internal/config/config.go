// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	VR       VRConfig       `yaml:"vr"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds rendering settings.
type GraphicsConfig struct {
	// MultiSamples is the MSAA sample count for the per-eye render
	// targets; 0 renders single-sampled.
	MultiSamples int32 `yaml:"multi_samples"`
}

// VRConfig holds headset and tracked-device settings.
type VRConfig struct {
	ShowDeviceModels bool    `yaml:"show_device_models"`
	EyeSeparation    float32 `yaml:"eye_separation"`

	// Simulator settings, used when no hardware runtime is wired in.
	SimControllers        int `yaml:"sim_controllers"`
	SimMeshDelayFrames    int `yaml:"sim_mesh_delay_frames"`
	SimTextureDelayFrames int `yaml:"sim_texture_delay_frames"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			MultiSamples: 4,
		},
		VR: VRConfig{
			ShowDeviceModels:      true,
			EyeSeparation:         0.065,
			SimControllers:        2,
			SimMeshDelayFrames:    3,
			SimTextureDelayFrames: 2,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
