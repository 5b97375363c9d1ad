package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	AppDirName       = "iconkit"
	ConfigFileName   = "iconkit.json"
	TOMLConfigName   = "iconkit.toml"
	ManifestFileName = "iconkit.db"
	MainPNGName      = "icon.png"
	ICOName          = "icon.ico"
	ICNSName         = "icon.icns"
	IconsetDirName   = "icon.iconset"
	DirPerm          = 0755
	FilePerm         = 0644
)

// PNGName returns the ladder file name for a square size, e.g. icon-32x32.png.
func PNGName(size int) string {
	return fmt.Sprintf("icon-%dx%d.png", size, size)
}

// AtomicWrite writes data to path via a temporary file + rename to avoid
// partial writes. The parent directory is created if needed.
func AtomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, FilePerm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// DataDir returns the platform-specific data directory for iconkit:
//   - Windows: %APPDATA%\iconkit
//   - Unix:    ~/.config/iconkit
//
// Falls back to os.TempDir()/iconkit if neither is available.
func DataDir() string {
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, AppDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppDirName)
	}
	return filepath.Join(home, ".config", AppDirName)
}
