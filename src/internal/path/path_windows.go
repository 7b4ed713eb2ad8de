//go:build windows

package path

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"unsafe"

	"github.com/rtvm/rtvm/src/internal/ui"
	"golang.org/x/sys/windows/registry"
)

var (
	moduser32              = syscall.NewLazyDLL("user32.dll")
	procSendMessageTimeout = moduser32.NewProc("SendMessageTimeoutW")
)

const (
	HWND_BROADCAST   = 0xffff
	WM_SETTINGCHANGE = 0x001A
	SMTO_ABORTIFHUNG = 0x0002
)

// AddToPath prepends dir to the user's PATH in the registry.
// The user is prompted unless assumeYes is set.
func AddToPath(dir string, assumeYes bool) error {
	if IsInPath(dir) {
		ui.Debug("%s is already in PATH", dir)
		return nil
	}

	key, err := registry.OpenKey(registry.CURRENT_USER, `Environment`, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open registry key: %w", err)
	}
	defer func() { _ = key.Close() }()

	currentPath, valtype, err := key.GetStringValue("Path")
	switch {
	case errors.Is(err, registry.ErrNotExist):
		valtype = registry.EXPAND_SZ
	case err != nil:
		return fmt.Errorf("failed to read current PATH: %w", err)
	}

	// Present in the registry but not yet in this session's environment
	for _, p := range strings.Split(currentPath, ";") {
		if sameDir(strings.TrimSpace(p), dir) {
			ui.Debug("%s is already in the registry PATH", dir)
			return nil
		}
	}

	ui.Header("PATH Setup Required")
	ui.Info("rtvm needs to add its link directory to your PATH")
	ui.Info("Directory: %s", ui.Highlight(dir))
	ui.Info("This will modify your user PATH environment variable")

	if !confirm(assumeYes) {
		ui.Warning("PATH not modified. You can add it later by running: rtvm init")
		return nil
	}

	newPath := dir
	if currentPath != "" {
		newPath += ";" + currentPath
	}

	if err := writePath(key, newPath, valtype); err != nil {
		return fmt.Errorf("failed to update PATH in registry: %w", err)
	}

	broadcastSettingChange()

	ui.Success("Added %s to your PATH", dir)
	ui.Warning("Please restart your terminal for the changes to take effect")
	ui.Info("You can verify by running: echo %%PATH%%")

	return nil
}

// pathWriter is the part of registry.Key that writePath needs
type pathWriter interface {
	SetStringValue(name, value string) error
	SetExpandStringValue(name, value string) error
}

// writePath stores Path with its original type so %VAR% entries keep expanding
func writePath(key pathWriter, value string, valtype uint32) error {
	if valtype == registry.EXPAND_SZ {
		return key.SetExpandStringValue("Path", value)
	}
	return key.SetStringValue("Path", value)
}

// broadcastSettingChange notifies running processes of environment changes
func broadcastSettingChange() {
	env := syscall.StringToUTF16Ptr("Environment")
	_, _, _ = procSendMessageTimeout.Call(
		uintptr(HWND_BROADCAST),
		uintptr(WM_SETTINGCHANGE),
		0,
		uintptr(unsafe.Pointer(env)),
		uintptr(SMTO_ABORTIFHUNG),
		5000,
		0,
	)
}

// DetectShell returns "powershell" or "cmd"
func DetectShell() string {
	if os.Getenv("PSModulePath") != "" {
		return "powershell"
	}
	return "cmd"
}

// GetShellConfigFile returns an empty string; Windows keeps PATH in the registry
func GetShellConfigFile(shell string) string {
	return ""
}
