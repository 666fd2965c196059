package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "polyship"

	// Filename of the default configuration file.
	configFilename = "polyship.yaml"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for runtime files (run locks).
//
//	Linux:   $XDG_RUNTIME_DIR/polyship or /run/user/<uid>/polyship
//	macOS:   ~/Library/Caches/polyship/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, toolName)
	}
	return filepath.Join(xdg.CacheHome, toolName, "run")
}

// Default path to the configuration file.
//
//	Linux:   $XDG_CONFIG_HOME/polyship/polyship.yaml
//	macOS:   ~/Library/Application Support/polyship/polyship.yaml
func Config() string {
	return filepath.Join(xdg.ConfigHome, toolName, configFilename)
}