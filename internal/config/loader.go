package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load loads the settings of a preset and validates them.
// Search order: customPath -> ~/.reactionmatch/configs/<preset>.{yaml,toml}
// -> ./configs/<preset>.yaml -> embedded default -> hardcoded default.
// Files only need to name the fields they change; everything else keeps the
// preset's value.
func Load(presetID, customPath string) (LevelSettings, error) {
	preset, ok := LookupPreset(presetID)
	if !ok {
		return LevelSettings{}, fmt.Errorf("config: unknown preset %q", presetID)
	}

	cfg, err := resolve(presetID, customPath, preset.Settings)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: preset %s: %w", presetID, err)
	}
	return cfg, nil
}

func resolve(presetID, customPath string, base LevelSettings) (LevelSettings, error) {
	// Try custom path first
	if customPath != "" {
		return LoadFile(customPath, base)
	}

	// Try user config directory
	for _, ext := range []string{".yaml", ".toml"} {
		if userCfgPath := userConfigPath(presetID + ext); userCfgPath != "" {
			if cfg, err := LoadFile(userCfgPath, base); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if cfg, err := LoadFile(filepath.Join("configs", presetID+".yaml"), base); err == nil {
		return cfg, nil
	}

	// Use embedded default YAML
	if data := GetDefaultYAML(presetID); data != nil {
		if cfg, err := Decode(data, ".yaml", base); err == nil {
			return cfg, nil
		}
	}
	return base, nil // Fallback to hardcoded if embed fails
}

// LoadFile reads a settings file over base. The format follows the file
// extension: .toml for TOML, anything else is YAML.
func LoadFile(path string, base LevelSettings) (LevelSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	cfg, err := Decode(data, filepath.Ext(path), base)
	if err != nil {
		return base, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses settings data of the given format (".yaml", ".yml" or
// ".toml") over base.
func Decode(data []byte, ext string, base LevelSettings) (LevelSettings, error) {
	cfg := base
	// Palettes are replaced, not merged element by element.
	cfg.Colors = nil
	cfg.Shapes = nil

	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
			return base, err
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return base, err
		}
	}

	if cfg.Colors == nil {
		cfg.Colors = base.Colors
	}
	if cfg.Shapes == nil {
		cfg.Shapes = base.Shapes
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".reactionmatch", "configs", filename)
}
