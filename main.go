package main

import (
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/MaaXYZ/maa-framework-go/v3"

	"github.com/dbrjs11/scan-far-to-near/agent/go-service/config"
)

func main() {
	cleanup, err := initLogger()
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	slog.Info("Scan Zoom Agent Service", "version", Version)

	if len(os.Args) < 2 {
		slog.Error("Usage: go-service <identifier>")
		os.Exit(1)
	}

	identifier := os.Args[1]
	slog.Info("Starting agent server", "identifier", identifier)

	cfg, err := config.Load(filepath.Join(getCwd(), ".env"))
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	setConfig(cfg)
	slog.Info("Config loaded",
		"threshold", cfg.SharpnessThreshold,
		"poorFrameLimit", cfg.PoorFrameLimit,
		"zoomWindow", cfg.ZoomWindow,
		"initialSteps", cfg.InitialSteps,
	)

	// Initialize MAA framework first (required before any other MAA calls)
	libDir := filepath.Join(getCwd(), "maafw")
	slog.Info("Initializing MAA framework", "libDir", libDir)
	if err := maa.Init(maa.WithLibDir(libDir)); err != nil {
		slog.Error("Failed to initialize MAA framework", "error", err)
		os.Exit(1)
	}
	defer maa.Release()
	slog.Info("MAA framework initialized")

	userPath := getCwd()
	if ok := maa.ConfigInitOption(userPath, "{}"); !ok {
		slog.Warn("Failed to init toolkit config option", "userPath", userPath)
	} else {
		slog.Info("Toolkit config option initialized", "userPath", userPath)
	}

	maa.AgentServerRegisterCustomRecognition("FrameSharpness", &frameSharpnessRecognition{})
	maa.AgentServerRegisterCustomAction("FrameHealth", &frameHealthAction{})
	slog.Info("Registered custom recognition and actions")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, shutdownSignals...)

	go func() {
		sig := <-sigChan
		slog.Info("Received signal, initiating shutdown", "signal", sig.String())
		maa.AgentServerShutDown()
	}()

	if !maa.AgentServerStartUp(identifier) {
		slog.Error("Failed to start agent server")
		os.Exit(1)
	}
	slog.Info("Agent server started")

	maa.AgentServerJoin()

	// Shutdown (idempotent, safe to call even if already shut down by signal)
	maa.AgentServerShutDown()
	sessions.CloseAll()
	slog.Info("Agent server shutdown complete")
}

func getCwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}
