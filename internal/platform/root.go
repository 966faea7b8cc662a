package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigFile is the name of the project configuration file.
const ConfigFile = "fireclass.yaml"

// ErrNoConfig is returned by FindConfig when no configuration file exists
// in the start directory or any of its parents.
var ErrNoConfig = errors.New("config file not found")

// FindConfig looks upwards from startDir for ConfigFile and returns its
// absolute path.
func FindConfig(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, ConfigFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoConfig
		}
		dir = parent
	}
}
