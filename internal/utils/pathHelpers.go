package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mitchellh/go-homedir"
)

const appName = "notedeck"

// GetAppDataDir returns the application data directory based on OS
func GetAppDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		// Windows: prefer LOCALAPPDATA, fall back to APPDATA
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName), nil
		}
		return "", fmt.Errorf("neither LOCALAPPDATA nor APPDATA environment variables are set")
	case "linux":
		// Linux: Follow XDG Base Directory specification
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			return filepath.Join(xdgDataHome, appName), nil
		}
		homeDir, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		return filepath.Join(homeDir, ".local", "share", appName), nil
	case "darwin":
		homeDir, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		return filepath.Join(homeDir, "Library", "Application Support", appName), nil
	default:
		homeDir, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		return filepath.Join(homeDir, "."+appName), nil
	}
}

// ExpandPath expands a leading ~ and returns the absolute form of path.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	return abs, nil
}

// ExpandPaths applies ExpandPath to every path.
func ExpandPaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		expanded, err := ExpandPath(p)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}
