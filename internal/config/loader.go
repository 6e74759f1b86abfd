package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// RulesFile is the file name searched for in the config directories.
const RulesFile = "rules.yaml"

// LoadRules loads the game rules.
// Search order: customPath -> ~/.dunesim/rules.yaml -> ./configs/rules.yaml -> embedded default
func LoadRules(customPath string) (Rules, error) {
	// Custom path errors are reported, the rest fall through
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Rules{}, fmt.Errorf("config: read %s: %w", customPath, err)
		}
		rules, err := ParseRules(data)
		if err != nil {
			return Rules{}, fmt.Errorf("config: %s: %w", customPath, err)
		}
		return rules, nil
	}

	if userCfgPath := userConfigPath(RulesFile); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if rules, err := ParseRules(data); err == nil {
				return rules, nil
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join("configs", RulesFile)); err == nil {
		if rules, err := ParseRules(data); err == nil {
			return rules, nil
		}
	}

	return DefaultRules(), nil
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dunesim", filename)
}
