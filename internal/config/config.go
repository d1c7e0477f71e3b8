package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML layout of the engine configuration.
type File struct {
	Storage struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"storage"`
	VectorDB struct {
		CollectionName string `yaml:"collection_name"`
		Dimensions     int    `yaml:"dimensions"`
	} `yaml:"vector_db"`
	Graph struct {
		MaxNodes    int     `yaml:"max_nodes"`
		DecayFactor float64 `yaml:"decay_factor"`
	} `yaml:"graph"`
	Prediction struct {
		PredictionWindow string  `yaml:"prediction_window"`
		MinConfidence    float64 `yaml:"min_confidence"`
	} `yaml:"prediction"`
	Privacy struct {
		BlacklistFile string `yaml:"blacklist_file"`
		PolicyFile    string `yaml:"policy_file"`
	} `yaml:"privacy"`
}

// Config is the resolved runtime configuration for the context engine.
type Config struct {
	DataDir          string
	CollectionName   string
	Dimensions       int
	MaxNodes         int
	DecayFactor      float64
	PredictionWindow time.Duration
	MinConfidence    float64
	BlacklistFile    string
	PolicyFile       string
}

// Load reads a YAML config file and produces a runtime Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses YAML data and produces a runtime Config.
func LoadBytes(data []byte) (*Config, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return fromFile(&f)
}

func fromFile(f *File) (*Config, error) {
	cfg := DefaultConfig()

	if f.Storage.DataDir != "" {
		cfg.DataDir = expandHome(f.Storage.DataDir)
	}
	if f.VectorDB.CollectionName != "" {
		cfg.CollectionName = f.VectorDB.CollectionName
	}
	if f.VectorDB.Dimensions > 0 {
		cfg.Dimensions = f.VectorDB.Dimensions
	}
	if f.Graph.MaxNodes > 0 {
		cfg.MaxNodes = f.Graph.MaxNodes
	}
	if f.Graph.DecayFactor > 0 {
		if f.Graph.DecayFactor >= 1 {
			return nil, fmt.Errorf("invalid decay_factor %v: must be below 1", f.Graph.DecayFactor)
		}
		cfg.DecayFactor = f.Graph.DecayFactor
	}
	if f.Prediction.PredictionWindow != "" {
		d, err := time.ParseDuration(f.Prediction.PredictionWindow)
		if err != nil {
			return nil, fmt.Errorf("invalid prediction_window %q: %w", f.Prediction.PredictionWindow, err)
		}
		cfg.PredictionWindow = d
	}
	if f.Prediction.MinConfidence > 0 {
		cfg.MinConfidence = f.Prediction.MinConfidence
	}
	if f.Privacy.BlacklistFile != "" {
		cfg.BlacklistFile = expandHome(f.Privacy.BlacklistFile)
	}
	if f.Privacy.PolicyFile != "" {
		cfg.PolicyFile = expandHome(f.Privacy.PolicyFile)
	}

	if cfg.BlacklistFile == "" {
		cfg.BlacklistFile = filepath.Join(cfg.DataDir, "privacy", "blacklist.json")
	}

	return cfg, nil
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
