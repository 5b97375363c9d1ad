package iconutil

import (
	"context"
	"fmt"
	"os/exec"
)

// Available reports whether iconutil is on PATH (macOS only).
func Available() bool {
	_, err := exec.LookPath("iconutil")
	return err == nil
}

// Convert builds an ICNS file from an iconset directory using iconutil.
// Returns an error if iconutil is not found on PATH.
func Convert(ctx context.Context, iconsetDir, icnsPath string) error {
	if _, err := exec.LookPath("iconutil"); err != nil {
		return fmt.Errorf("iconutil not found on PATH (requires macOS): %w", err)
	}
	cmd := exec.CommandContext(ctx, "iconutil", "-c", "icns", "-o", icnsPath, iconsetDir)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("iconutil convert: %w\n%s", err, out)
	}
	return nil
}
