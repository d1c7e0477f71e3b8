package config

import (
	"path/filepath"
	"time"
)

const (
	DefaultCollectionName   = "activities"
	DefaultDimensions       = 256
	DefaultMaxNodes         = 5000
	DefaultDecayFactor      = 0.95
	DefaultPredictionWindow = time.Hour
	DefaultMinConfidence    = 0.3
)

// DefaultDataDir returns the default engine data directory path.
func DefaultDataDir() string {
	return "~/.contextd/data"
}

// DefaultConfig returns a config with defaults for when no config file is given.
func DefaultConfig() *Config {
	dataDir := expandHome(DefaultDataDir())
	return &Config{
		DataDir:          dataDir,
		CollectionName:   DefaultCollectionName,
		Dimensions:       DefaultDimensions,
		MaxNodes:         DefaultMaxNodes,
		DecayFactor:      DefaultDecayFactor,
		PredictionWindow: DefaultPredictionWindow,
		MinConfidence:    DefaultMinConfidence,
		BlacklistFile:    filepath.Join(dataDir, "privacy", "blacklist.json"),
	}
}
