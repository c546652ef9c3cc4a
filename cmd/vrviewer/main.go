// Package main is the entry point for the VR bridge viewer. It drives the
// stereo render loop against the simulated runtime, drawing the tracked
// device models into an otherwise empty scene.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/openviz/vrbridge/internal/config"
	"github.com/openviz/vrbridge/internal/engine/scene"
	"github.com/openviz/vrbridge/internal/engine/vrwindow"
	"github.com/openviz/vrbridge/internal/logger"
	"github.com/openviz/vrbridge/internal/vr/sim"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== VR Bridge Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	runtime := sim.New(sim.Config{
		Controllers:        cfg.VR.SimControllers,
		MeshDelayFrames:    cfg.VR.SimMeshDelayFrames,
		TextureDelayFrames: cfg.VR.SimTextureDelayFrames,
	})

	w := vrwindow.New(runtime, vrwindow.Options{
		MultiSamples:     cfg.Graphics.MultiSamples,
		ShowDeviceModels: cfg.VR.ShowDeviceModels,
		EyeSeparation:    cfg.VR.EyeSeparation,
	})
	w.AddRenderer(scene.NewBasicRenderer())
	w.SetDashboardOverlay(vrwindow.DefaultOverlay{})

	if err := w.Initialize(); err != nil {
		logger.Error("failed to initialize stereo window", zap.Error(err))
		os.Exit(1)
	}
	defer w.Finalize()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	frames := 0
	for {
		select {
		case <-quit:
			logger.Info("interrupted", zap.Int("frames", frames))
			return
		default:
		}

		if err := w.Render(); err != nil {
			logger.Error("render failed", zap.Error(err))
			os.Exit(1)
		}
		frames++
	}
}
