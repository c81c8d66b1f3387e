// Package config loads on-disk defaults for the analyzer's Settings and
// for the CLI's --exclude list from an optional .deadnix.yml file. CLI
// flags always take precedence over whatever is loaded here; Load only
// supplies defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nix-community/deadnix-go"
)

// File is the shape of .deadnix.yml / deadnix.yml.
type File struct {
	NoLambdaArg          bool     `yaml:"no_lambda_arg"`
	NoLambdaPatternNames bool     `yaml:"no_lambda_pattern_names"`
	NoUnderscore         bool     `yaml:"no_underscore"`
	WarnUsedUnderscore   bool     `yaml:"warn_used_underscore"`
	Exclude              []string `yaml:"exclude"`
}

// Settings converts the loaded file into analyzer Settings.
func (f File) Settings() deadnix.Settings {
	return deadnix.Settings{
		NoLambdaArg:          f.NoLambdaArg,
		NoLambdaPatternNames: f.NoLambdaPatternNames,
		NoUnderscore:         f.NoUnderscore,
		WarnUsedUnderscore:   f.WarnUsedUnderscore,
	}
}

// candidateNames are tried, in order, in dir when no explicit path is given.
var candidateNames = []string{".deadnix.yml", "deadnix.yml"}

// Load reads path if non-empty, or else the first of candidateNames found
// in dir. A missing file (when path is empty) is not an error: Load
// returns a zero File. A missing file at an explicit path is an error.
func Load(dir, path string) (File, error) {
	if path != "" {
		return loadFile(path)
	}
	for _, name := range candidateNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return loadFile(candidate)
		} else if !errors.Is(err, os.ErrNotExist) {
			return File{}, fmt.Errorf("config: stat %s: %w", candidate, err)
		}
	}
	return File{}, nil
}

func loadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return f, nil
}
