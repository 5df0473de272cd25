package hidio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscoverKeyboardInMatchesByName(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "event3")
	require.NoError(t, os.WriteFile(target, nil, 0o644))

	link := filepath.Join(dir, "usb-Some_Vendor_Wired_Keyboard-event-kbd")
	require.NoError(t, os.Symlink(target, link))

	unrelated := filepath.Join(dir, "usb-Some_Vendor_Mouse-event-mouse")
	require.NoError(t, os.Symlink(target, unrelated))

	got, err := discoverKeyboardIn(dir)
	require.NoError(t, err)
	require.Equal(t, target, got)
}

func TestDiscoverKeyboardInNoMatch(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "event3")
	require.NoError(t, os.WriteFile(target, nil, 0o644))
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "usb-Some_Vendor_Mouse-event-mouse")))

	_, err := discoverKeyboardIn(dir)
	require.Error(t, err)
}

func TestDiscoverKeyboardInMissingDir(t *testing.T) {
	_, err := discoverKeyboardIn(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}
