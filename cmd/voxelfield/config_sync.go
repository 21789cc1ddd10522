package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"voxelfield/internal/config"
)

// writeConfigFromEnv materializes configuration injected by an orchestrator
// as a base64 YAML payload. Returns true when a file was written.
func writeConfigFromEnv(cfgPath string) (bool, error) {
	payload := os.Getenv("VOXELFIELD_CONFIG_YAML_B64")
	if payload == "" {
		return false, nil
	}
	if cfgPath == "" {
		return false, errors.New("environment provided configuration but no --config path supplied")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return false, fmt.Errorf("decode config yaml: %w", err)
	}
	cfg := config.Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return false, fmt.Errorf("parse config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return false, fmt.Errorf("validate config: %w", err)
	}

	dir := filepath.Dir(cfgPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create config directory: %w", err)
		}
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config yaml: %w", err)
	}
	if err := os.WriteFile(cfgPath, out, 0o600); err != nil {
		return false, fmt.Errorf("write config file: %w", err)
	}
	return true, nil
}
