package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read on top of the YAML file
const (
	EnvAPIKey      = "SILICONFLOW_API_KEY"
	EnvBaseURL     = "SILICONFLOW_BASE_URL"
	EnvModel       = "DEFAULT_MODEL"
	EnvTemperature = "TEMPERATURE"
	EnvMaxTokens   = "MAX_TOKENS"
)

// LoadDotEnv loads the given .env files that exist. Variables already present
// in the environment are left untouched.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}

	if v, ok := get(EnvAPIKey); ok {
		c.LLM.APIKey = v
	}
	if v, ok := get(EnvBaseURL); ok {
		c.LLM.BaseURL = v
	}
	if v, ok := get(EnvModel); ok {
		c.LLM.Model = v
	}
	if v, ok := get(EnvTemperature); ok {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTemperature, v, err)
		}
		c.LLM.Temperature = t
	}
	if v, ok := get(EnvMaxTokens); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxTokens, v, err)
		}
		c.LLM.MaxTokens = n
	}
	return nil
}
