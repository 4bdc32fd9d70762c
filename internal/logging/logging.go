package logging

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// New returns the structured logger used by the outer layers. The scanning
// core itself stays silent; degradation there surfaces as diagnostics on the
// report instead. Level comes from ANCHOR_SHIELD_LOG (default info).
func New(name string) hclog.Logger {
	level := hclog.Info
	if v := os.Getenv("ANCHOR_SHIELD_LOG"); v != "" {
		level = hclog.LevelFromString(v)
		if level == hclog.NoLevel {
			level = hclog.Info
		}
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Output: os.Stderr,
		Level:  level,
	})
}
