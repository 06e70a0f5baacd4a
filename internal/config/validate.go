package config

import (
	"github.com/pkg/errors"
)

// validRTU reports whether the serial section is filled in.
func (sf *SerialConfig) enabled() bool {
	return sf.Port != ""
}

// Validate checks configuration correctness. It does not mutate the
// configuration; defaults are applied by Normalize afterwards.
func Validate(cfg *Config) error {
	if cfg.Endpoint == "" && !cfg.Serial.enabled() {
		return errors.New("one of endpoint or serial.port is required")
	}
	if cfg.Endpoint != "" && cfg.Serial.enabled() {
		return errors.New("endpoint and serial.port are mutually exclusive")
	}
	if cfg.SlaveID < 1 || cfg.SlaveID > 247 {
		return errors.Errorf("slave_id %d must be between 1 and 247", cfg.SlaveID)
	}
	if cfg.TimeoutMs < 0 {
		return errors.Errorf("timeout_ms %d must not be negative", cfg.TimeoutMs)
	}
	if cfg.RetryCount < 0 {
		return errors.Errorf("retry_count %d must not be negative", cfg.RetryCount)
	}
	if len(cfg.Jobs) == 0 {
		return errors.New("at least one job is required")
	}
	for i, job := range cfg.Jobs {
		switch job.FC {
		case 1, 2, 3, 4:
		default:
			return errors.Errorf("job %d: fc %d is not a read function code (1,2,3,4)", i, job.FC)
		}
		if job.Quantity < 1 {
			return errors.Errorf("job %d: quantity must be >= 1", i)
		}
		if job.ScanMs <= 0 {
			return errors.Errorf("job %d: scan_ms must be > 0", i)
		}
	}
	return nil
}

// Normalize applies defaults. It must be called only after Validate.
func Normalize(cfg *Config) {
	if cfg.TimeoutMs == 0 {
		cfg.TimeoutMs = DefaultTimeoutMs
	}
	if cfg.RetryCount == 0 {
		cfg.RetryCount = DefaultRetryCount
	}
	if cfg.Serial.enabled() {
		if cfg.Serial.BaudRate == 0 {
			cfg.Serial.BaudRate = 19200
		}
		if cfg.Serial.DataBits == 0 {
			cfg.Serial.DataBits = 8
		}
		if cfg.Serial.Parity == "" {
			cfg.Serial.Parity = "E"
		}
		if cfg.Serial.StopBits == 0 {
			cfg.Serial.StopBits = 1
		}
	}
}
