// Package dirs resolves the per-user directories ytdlq reads and writes.
package dirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "ytdlq"

// AppName returns the canonical application name for directory paths.
func AppName() string {
	return appName
}

// ConfigDir returns the app's configuration directory.
// - Linux: $XDG_CONFIG_HOME/ytdlq or ~/.config/ytdlq
// - macOS: ~/Library/Application Support/ytdlq
// - Windows: %AppData%/ytdlq
func ConfigDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		return underHome("Library", "Application Support", appName)
	case "linux":
		return xdg("XDG_CONFIG_HOME", ".config")
	default:
		cfg, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfg, appName), nil
	}
}

// StateDir holds the log file.
// - Linux: $XDG_STATE_HOME/ytdlq or ~/.local/state/ytdlq
// - macOS: ~/Library/Application Support/ytdlq/state
// - Windows: %LocalAppData%/ytdlq/state, else ConfigDir/state
func StateDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		return underHome("Library", "Application Support", appName, "state")
	case "linux":
		return xdg("XDG_STATE_HOME", filepath.Join(".local", "state"))
	default:
		if la := os.Getenv("LOCALAPPDATA"); la != "" {
			return filepath.Join(la, appName, "state"), nil
		}
		cfg, err := ConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfg, "state"), nil
	}
}

// LogFile is where the TUI writes its log.
func LogFile() (string, error) {
	d, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, appName+".log"), nil
}

// DefaultOutputDir returns ~/Downloads when it exists, else the home
// directory itself.
func DefaultOutputDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dl := filepath.Join(home, "Downloads")
	if fi, err := os.Stat(dl); err == nil && fi.IsDir() {
		return dl, nil
	}
	return home, nil
}

// Ensure creates the directory if it doesn't exist.
func Ensure(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// EnsureAll creates the config and state directories.
func EnsureAll() error {
	for _, fn := range []func() (string, error){ConfigDir, StateDir} {
		p, err := fn()
		if err != nil {
			continue
		}
		if err := Ensure(p); err != nil {
			return err
		}
	}
	return nil
}

func xdg(env, fallback string) (string, error) {
	if v := os.Getenv(env); v != "" {
		return filepath.Join(v, appName), nil
	}
	return underHome(fallback, appName)
}

func underHome(elem ...string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, elem...)...), nil
}
