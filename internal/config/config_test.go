package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.MultiSamples != 4 {
		t.Errorf("expected 4 multisamples, got %d", cfg.Graphics.MultiSamples)
	}
	if !cfg.VR.ShowDeviceModels {
		t.Error("expected device models shown by default")
	}
	if cfg.VR.EyeSeparation != 0.065 {
		t.Errorf("expected eye separation 0.065, got %f", cfg.VR.EyeSeparation)
	}
	if cfg.VR.SimControllers != 2 {
		t.Errorf("expected 2 simulated controllers, got %d", cfg.VR.SimControllers)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  multi_samples: 0

vr:
  show_device_models: false
  eye_separation: 0.07
  sim_controllers: 1

logging:
  level: debug
  log_file: vr.log
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Graphics.MultiSamples != 0 {
		t.Errorf("expected 0 multisamples, got %d", cfg.Graphics.MultiSamples)
	}
	if cfg.VR.ShowDeviceModels {
		t.Error("expected device models disabled")
	}
	if cfg.VR.EyeSeparation != 0.07 {
		t.Errorf("expected eye separation 0.07, got %f", cfg.VR.EyeSeparation)
	}
	if cfg.VR.SimControllers != 1 {
		t.Errorf("expected 1 simulated controller, got %d", cfg.VR.SimControllers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "vr.log" {
		t.Errorf("expected vr.log, got %s", cfg.Logging.LogFile)
	}

	// Fields absent from the file keep their defaults.
	if cfg.VR.SimMeshDelayFrames != 3 {
		t.Errorf("expected default mesh delay 3, got %d", cfg.VR.SimMeshDelayFrames)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	want := Default()
	want.Graphics.MultiSamples = 8
	want.Logging.Level = "warn"

	if err := want.SaveTo(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got := Default()
	if err := loadFromFile(got, path); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Graphics.MultiSamples != 8 {
		t.Errorf("expected 8 multisamples after round trip, got %d", got.Graphics.MultiSamples)
	}
	if got.Logging.Level != "warn" {
		t.Errorf("expected warn level after round trip, got %s", got.Logging.Level)
	}
}
