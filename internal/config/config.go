package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const FileName = ".anchor-shield.json"

type IgnoreRule struct {
	Rule   string `json:"rule"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type Config struct {
	SeverityThreshold string       `json:"severityThreshold"`
	Rules             []string     `json:"rules"`
	Ignore            []IgnoreRule `json:"ignore"`
	// DowngradeUncheckedToLow lowers raw-handle findings on UncheckedAccount
	// fields to Low severity. Off by default.
	DowngradeUncheckedToLow bool `json:"downgradeUncheckedToLow"`
	TimeBudgetMs            int  `json:"timeBudgetMs"`
}

func Default() Config {
	return Config{
		SeverityThreshold: "Low",
		TimeBudgetMs:      30000,
	}
}

// Load searches upwards from startDir for a config file. Returns the default
// config and an empty path when none is found.
func Load(startDir string) (Config, string, error) {
	cfg := Default()
	dir := startDir
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			b, err := os.ReadFile(candidate)
			if err != nil {
				return cfg, candidate, err
			}
			_ = json.Unmarshal(b, &cfg)
			return cfg, candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached root
			break
		}
		dir = parent
	}
	return cfg, "", nil
}
