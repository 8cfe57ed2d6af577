package utils

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// CopyToClipboard copies the given text to the system clipboard
func CopyToClipboard(text string) error {
	// WSL has no X clipboard by default; clip.exe reaches the Windows one.
	if isRunningInWSL() {
		if _, err := exec.LookPath("clip.exe"); err == nil {
			cmd := exec.Command("clip.exe")
			cmd.Stdin = strings.NewReader(text)
			if err := cmd.Run(); err != nil {
				return fmt.Errorf("clipboard command failed: %w", err)
			}
			return nil
		}
	}

	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility found (install xclip, xsel or wl-clipboard)")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// isRunningInWSL detects if we're running in Windows Subsystem for Linux
func isRunningInWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}

	if os.Getenv("WSL_DISTRO_NAME") != "" || os.Getenv("WSLENV") != "" {
		return true
	}

	if data, err := os.ReadFile("/proc/version"); err == nil {
		version := strings.ToLower(string(data))
		if strings.Contains(version, "microsoft") || strings.Contains(version, "wsl") {
			return true
		}
	}

	return false
}
