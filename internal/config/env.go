package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	EnvKp     = "PIDSIM_KP"
	EnvKi     = "PIDSIM_KI"
	EnvKd     = "PIDSIM_KD"
	EnvTarget = "PIDSIM_TARGET"
	EnvData   = "PIDSIM_DATA"
)

// LoadDotEnv loads variables from the given files into the process
// environment without overriding ones already set. Missing files are
// skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides gains and target from PIDSIM_* variables.
func (c *Config) ApplyEnv() error {
	fields := []struct {
		key string
		dst *float64
	}{
		{EnvKp, &c.Gains.Kp},
		{EnvKi, &c.Gains.Ki},
		{EnvKd, &c.Gains.Kd},
		{EnvTarget, &c.Init.Target},
	}
	for _, f := range fields {
		raw, ok := os.LookupEnv(f.key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = v
	}
	return nil
}

// DataDir returns PIDSIM_DATA if set, else fallback.
func DataDir(fallback string) string {
	if dir := os.Getenv(EnvData); dir != "" {
		return dir
	}
	return fallback
}
