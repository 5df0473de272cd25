package hidio

import (
	"os"
	"path/filepath"
	"strings"
)

// DiscoverKeyboard scans /dev/input/by-id for a device symlink whose
// name suggests a physical keyboard, returning the resolved device
// path. This is a convenience for interactive setup only — a fixed
// path from config.Tunables always works and is what the event loops
// use by default; nothing in the core pipeline requires discovery to
// succeed.
func DiscoverKeyboard() (string, error) {
	return discoverKeyboardIn("/dev/input/by-id")
}

func discoverKeyboardIn(byID string) (string, error) {
	entries, err := os.ReadDir(byID)
	if err != nil {
		return "", err
	}

	for _, e := range entries {
		lower := strings.ToLower(e.Name())
		if !strings.Contains(lower, "kbd") && !strings.Contains(lower, "keyboard") {
			continue
		}
		target, err := filepath.EvalSymlinks(filepath.Join(byID, e.Name()))
		if err != nil {
			continue
		}
		return target, nil
	}

	return "", os.ErrNotExist
}
