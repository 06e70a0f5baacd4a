// Package config loads and validates the YAML configuration of the mblink
// poll tool.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// tuning defaults, applied by Normalize.
const (
	DefaultTimeoutMs  = 500
	DefaultRetryCount = 5
)

// Config is the root of the poll tool configuration.
type Config struct {
	// Exactly one of Endpoint (TCP) and Serial (RTU) must be set.
	Endpoint   string       `yaml:"endpoint"`
	Serial     SerialConfig `yaml:"serial"`
	SlaveID    uint8        `yaml:"slave_id"`
	TimeoutMs  int          `yaml:"timeout_ms"`
	RetryCount int          `yaml:"retry_count"`
	Jobs       []JobConfig  `yaml:"jobs"`
}

// SerialConfig describes an RTU serial port.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"`
	StopBits int    `yaml:"stop_bits"`
}

// JobConfig is one periodic read job.
type JobConfig struct {
	FC       uint8  `yaml:"fc"`
	Address  uint16 `yaml:"address"`
	Quantity uint16 `yaml:"quantity"`
	ScanMs   int    `yaml:"scan_ms"`
}

// Load reads and parses the YAML file at path. It does not validate.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return cfg, nil
}
