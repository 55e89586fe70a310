package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/titanous/json5"
)

// fileConfig mirrors Config with string durations so JSON5 files can say "90s"
type fileConfig struct {
	Config
	PageTimeout      string `json:"pageTimeout"`
	CaptureWindow    string `json:"captureWindow"`
	InteractionDelay string `json:"interactionDelay"`
	RedisTTL         string `json:"redisTtl"`
}

// LoadFile layers <name>.<ext> and <name>.local.<ext> over the defaults, then applies
// the environment on top. A missing file is not an error; a malformed one is.
// Zero values in a file never override defaults (mergo semantics), so use
// HEADLESS=false rather than "headless: false" to show the browser.
func LoadFile(name string) (*Config, error) {
	if name == "" {
		return Load(), nil
	}
	_ = godotenv.Load()

	cfg := Defaults()
	ext := filepath.Ext(name)
	local := strings.TrimSuffix(name, ext) + ".local" + ext

	for _, path := range []string{name, local} {
		override, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if override == nil {
			continue
		}
		if err := mergo.Merge(cfg, *override, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge %s: %w", path, err)
		}
	}

	return applyEnv(cfg), nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := json5.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	out := fc.Config
	durations := []struct {
		raw string
		dst *time.Duration
	}{
		{fc.PageTimeout, &out.PageTimeout},
		{fc.CaptureWindow, &out.CaptureWindow},
		{fc.InteractionDelay, &out.InteractionDelay},
		{fc.RedisTTL, &out.RedisTTL},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("config %s: bad duration %q: %w", path, d.raw, err)
		}
		*d.dst = v
	}
	return &out, nil
}
