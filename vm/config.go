package vm

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// Config describes the machine created by Start.
type Config struct {
	MemoryWords uint32            `yaml:"memory_words"` // Main memory size, in words.
	IcacheLines uint32            `yaml:"icache_lines"`
	DcacheLines uint32            `yaml:"dcache_lines"`
	Origin      uint32            `yaml:"origin"`  // Load address of programs without one.
	Strict      bool              `yaml:"strict"`  // Out of range operands fail assembly.
	Verbose     bool              `yaml:"verbose"` // Log every component.
	Defines     map[string]string `yaml:"defines"` // Extra assembler equates.
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		MemoryWords: 1024,
		IcacheLines: 64,
		DcacheLines: 64,
	}
}

// Validate checks the configuration for values that cannot be built.
func (cfg Config) Validate() (err error) {
	switch {
	case cfg.MemoryWords == 0:
		err = &ErrConfig{Field: "memory_words", Err: ErrConfigValue}
	case cfg.IcacheLines == 0:
		err = &ErrConfig{Field: "icache_lines", Err: ErrConfigValue}
	case cfg.DcacheLines == 0:
		err = &ErrConfig{Field: "dcache_lines", Err: ErrConfigValue}
	case cfg.Origin >= cfg.MemoryWords:
		err = &ErrConfig{Field: "origin", Err: ErrConfigValue}
	}

	return
}

// LoadConfig reads a YAML configuration. Fields not in the input keep
// their DefaultConfig values.
func LoadConfig(input io.Reader) (cfg Config, err error) {
	cfg = DefaultConfig()

	data, err := io.ReadAll(input)
	if err != nil {
		return
	}

	// Empty, comment only and null documents keep the defaults.
	var document any
	err = yaml.Unmarshal(data, &document)
	if err == nil && document != nil {
		err = yaml.NewDecoder(bytes.NewReader(data), yaml.DisallowUnknownField()).Decode(&cfg)
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrConfigValue, err)
		return
	}

	err = cfg.Validate()
	return
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (cfg Config, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	cfg, err = LoadConfig(inf)
	if err != nil {
		err = &ErrLoad{Filename: path, Err: err}
	}
	return
}
