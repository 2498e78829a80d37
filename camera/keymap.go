package camera

import (
	"github.com/rs/zerolog/log"
)

// KeyEnum maps key names to Win32 virtual key codes. Camera apps driven
// through an emulator or scrcpy window usually bind zoom to one of these.
var KeyEnum = map[string]int32{
	"Plus":       0xBB, // =/+
	"Minus":      0xBD, // -/_
	"Add":        0x6B, // Numpad +
	"Subtract":   0x6D, // Numpad -
	"PageUp":     0x21,
	"PageDown":   0x22,
	"Up":         0x26,
	"Down":       0x28,
	"VolumeUp":   0xAF,
	"VolumeDown": 0xAE,
	"Unbound":    -1,
}

const (
	DefaultZoomInKey  = "Plus"
	DefaultZoomOutKey = "Minus"
)

// GetKeyCode resolves a key name.
//
// Returns:
//   - the key code when the key is known and bound.
//   - -1 when the key is known but unbound.
//   - -2 when the key name is unknown.
func GetKeyCode(key string) int32 {
	keyCode, ok := KeyEnum[key]
	if !ok {
		log.Error().Msgf("Invalid key: %s", key)
		return -2
	}
	if keyCode == -1 {
		log.Error().Msgf("Unsupported key: %s", key)
	}
	return keyCode
}
