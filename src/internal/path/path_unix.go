//go:build !windows

package path

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rtvm/rtvm/src/internal/constants"
	"github.com/rtvm/rtvm/src/internal/ui"
)

// DetectShell returns the user's shell name (bash, zsh, fish, etc.)
func DetectShell() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		return "unknown"
	}

	return filepath.Base(shell)
}

// GetShellConfigFile returns the config file path for the given shell
func GetShellConfigFile(shell string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch shell {
	case constants.ShellBash:
		// Prefer .bashrc if it exists, otherwise .bash_profile
		bashrc := filepath.Join(home, ".bashrc")
		if _, err := os.Stat(bashrc); err == nil {
			return bashrc
		}
		return filepath.Join(home, ".bash_profile")

	case constants.ShellZsh:
		return filepath.Join(home, ".zshrc")

	case constants.ShellFish:
		return filepath.Join(home, ".config", "fish", "config.fish")

	default:
		return filepath.Join(home, ".profile")
	}
}

// exportLine returns the snippet appended to the shell config for dir
func exportLine(shell, dir string) string {
	if shell == constants.ShellFish {
		return fmt.Sprintf("\n# Added by rtvm\nset -gx PATH \"%s\" $PATH\n", dir)
	}
	return fmt.Sprintf("\n# Added by rtvm\nexport PATH=\"%s:$PATH\"\n", dir)
}

// AddToPath adds dir to the user's PATH by modifying their shell config.
// The user is prompted unless assumeYes is set.
func AddToPath(dir string, assumeYes bool) error {
	if IsInPath(dir) {
		ui.Debug("%s is already in PATH", dir)
		return nil
	}

	shell := DetectShell()
	if shell == "unknown" {
		return fmt.Errorf("could not detect shell - please add %s to your PATH manually", dir)
	}

	configFile := GetShellConfigFile(shell)
	if configFile == "" {
		return fmt.Errorf("could not determine config file for shell %s", shell)
	}

	if containsPathModification(configFile, dir) {
		ui.Warning("PATH modification already exists in %s, but not active in current shell", configFile)
		ui.Info("Please restart your terminal or run: source %s", configFile)
		return nil
	}

	line := exportLine(shell, dir)

	ui.Header("PATH Setup Required")
	ui.Info("rtvm needs to add its link directory to your PATH")
	ui.Info("Shell: %s", ui.Highlight(shell))
	ui.Info("Config file: %s", ui.Highlight(configFile))
	ui.Info("Will append: %s", ui.Highlight(strings.TrimSpace(line)))

	if !confirm(assumeYes) {
		ui.Warning("PATH not modified. Please add this manually to your %s:", configFile)
		ui.Info("%s", strings.TrimSpace(line))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(configFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to write to config file: %w", err)
	}

	ui.Success("Added %s to PATH in %s", dir, configFile)
	ui.Warning("Please restart your terminal or run: source %s", configFile)

	return nil
}

// containsPathModification checks if the config file already puts dir on PATH
func containsPathModification(configFile, dir string) bool {
	f, err := os.Open(configFile)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, dir) && (strings.Contains(line, "PATH") || strings.Contains(line, "path")) {
			return true
		}
	}

	return false
}
