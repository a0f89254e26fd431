package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type FileConfig struct {
	BinDir         string  `yaml:"bin_dir"`
	Mode           string  `yaml:"mode"`
	Compiler       string  `yaml:"compiler"`
	ConfigureArgs  string  `yaml:"configure_args"`
	MakeTarget     *string `yaml:"make_target"`
	UnsetGrantsAll *bool   `yaml:"unset_grants_all"`
	Strict         *bool   `yaml:"strict"`
	Debug          *bool   `yaml:"debug"`
}

func Load(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read config: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse config YAML: %w", err)
	}

	return cfg, nil
}

func FromString(s string) (FileConfig, error) {
	var cfg FileConfig
	if err := yaml.Unmarshal([]byte(s), &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse config YAML: %w", err)
	}
	return cfg, nil
}
