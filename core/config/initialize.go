package config

import (
	"log"
	"path/filepath"

	"github.com/spf13/afero"
)

// Initialize creates the configuration directory, writing the default
// configuration if none exists, then loads it.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	return initializeFs(afero.NewOsFs(), dir, logger)
}

func initializeFs(fs afero.Fs, dir string, logger *log.Logger) (*Configuration, error) {
	if err := fs.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	configPath := filepath.Join(dir, ConfigurationName)
	exists, err := afero.Exists(fs, configPath)
	switch {
	case err != nil:
		return nil, err
	case exists:
		logger.Printf("Found existing %s, skipping", ConfigurationName)
	default:
		logger.Printf("Creating %s", ConfigurationName)
		if err := afero.WriteFile(fs, configPath, defaultConfigData, 0600); err != nil {
			return nil, err
		}
	}

	return loadFs(fs, dir)
}
