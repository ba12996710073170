package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v2"
)

const defaultConfigFile = "xlpress.yaml"

// fileConfig mirrors the command-line flags. Pointer fields distinguish an
// explicit zero from an absent key; flags set on the command line always win.
type fileConfig struct {
	Output    string   `yaml:"output"`
	Effort    string   `yaml:"effort"`
	Quality   *float32 `yaml:"quality"`
	Lossless  *bool    `yaml:"lossless"`
	Recursive *bool    `yaml:"recursive"`
	Preset    *int     `yaml:"preset"`
	Threads   *int     `yaml:"threads"`
	LogLevel  string   `yaml:"log_level"`
	Progress  *bool    `yaml:"progress"`
}

// loadConfig reads path. A missing file is only an error when the user named
// it explicitly.
func loadConfig(path string, explicit bool) (fileConfig, error) {
	var c fileConfig
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return c, nil
		}
		return c, err
	}
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}
