// Package config loads agent tuning from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/dbrjs11/scan-far-to-near/agent/go-service/advisory"
	"github.com/dbrjs11/scan-far-to-near/agent/go-service/camera"
	"github.com/dbrjs11/scan-far-to-near/agent/go-service/framehealth"
	"github.com/dbrjs11/scan-far-to-near/agent/go-service/sharpness"
)

const envPrefix = "SCANZOOM_"

// Config is the agent configuration.
type Config struct {
	SharpnessThreshold float64       `validate:"gt=0"`
	PoorFrameLimit     int           `validate:"gte=1"`
	ZoomWindow         time.Duration `validate:"gt=0"`
	InitialSteps       float64       `validate:"gte=0"`
	AdvisoryDuration   time.Duration `validate:"gt=0"`
	Advisory           string        `validate:"required"`
	Concurrent         bool
	DebugDir           string
	ZoomInKey          string `validate:"required"`
	ZoomOutKey         string `validate:"required"`
}

// Default returns the calibrated configuration.
func Default() Config {
	t := framehealth.DefaultTuning()
	return Config{
		SharpnessThreshold: sharpness.Threshold,
		PoorFrameLimit:     t.PoorFrameLimit,
		ZoomWindow:         t.ZoomWindow,
		InitialSteps:       t.InitialSteps,
		AdvisoryDuration:   advisory.DefaultDuration,
		Advisory:           t.Advisory,
		Concurrent:         true,
		ZoomInKey:          camera.DefaultZoomInKey,
		ZoomOutKey:         camera.DefaultZoomOutKey,
	}
}

// Load reads the given .env files (missing files are skipped), applies
// SCANZOOM_* overrides on top of Default and validates the result.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Default()
	var err error
	if cfg.SharpnessThreshold, err = getFloat("SHARPNESS_THRESHOLD", cfg.SharpnessThreshold); err != nil {
		return Config{}, err
	}
	if cfg.PoorFrameLimit, err = getInt("POOR_FRAME_LIMIT", cfg.PoorFrameLimit); err != nil {
		return Config{}, err
	}
	if cfg.ZoomWindow, err = getDuration("ZOOM_WINDOW", cfg.ZoomWindow); err != nil {
		return Config{}, err
	}
	if cfg.InitialSteps, err = getFloat("INITIAL_STEPS", cfg.InitialSteps); err != nil {
		return Config{}, err
	}
	if cfg.AdvisoryDuration, err = getDuration("ADVISORY_DURATION", cfg.AdvisoryDuration); err != nil {
		return Config{}, err
	}
	if cfg.Concurrent, err = getBool("CONCURRENT", cfg.Concurrent); err != nil {
		return Config{}, err
	}
	cfg.Advisory = getEnv("ADVISORY", cfg.Advisory)
	cfg.DebugDir = getEnv("DEBUG_DIR", cfg.DebugDir)
	cfg.ZoomInKey = getEnv("ZOOM_IN_KEY", cfg.ZoomInKey)
	cfg.ZoomOutKey = getEnv("ZOOM_OUT_KEY", cfg.ZoomOutKey)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct tags.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// FrameHealth converts the config to controller tuning.
func (c Config) FrameHealth() framehealth.Tuning {
	return framehealth.Tuning{
		SharpnessThreshold: c.SharpnessThreshold,
		PoorFrameLimit:     c.PoorFrameLimit,
		ZoomWindow:         c.ZoomWindow,
		InitialSteps:       c.InitialSteps,
		Advisory:           c.Advisory,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(envPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(envPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return f, nil
}

func getInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(envPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return n, nil
}

func getBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(envPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return b, nil
}

// getDuration accepts Go durations ("3s") or plain milliseconds ("3000").
func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(envPrefix + key)
	if val == "" {
		return defaultVal, nil
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return d, nil
}
