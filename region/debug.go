package region

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// SaveDebugImage writes img as a timestamped PNG under outputDir.
func SaveDebugImage(outputDir, name string, img image.Image) string {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Warn().Err(err).Str("dir", outputDir).Msg("Failed to create debug dir")
		return ""
	}
	path := filepath.Join(outputDir, fmt.Sprintf("%s_%d.png", name, time.Now().UnixMilli()))
	f, err := os.Create(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to create debug image")
		return ""
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to encode debug image")
		return ""
	}
	return path
}
