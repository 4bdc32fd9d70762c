package engine

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
)

type Baseline struct {
	GeneratedAt  time.Time       `json:"generatedAt"`
	Fingerprints map[string]bool `json:"fingerprints"`
}

// LoadBaseline reads a baseline file. Accepts both the bare fingerprint array
// and the full struct form.
func LoadBaseline(path string) (Baseline, error) {
	var b Baseline
	if path == "" {
		return b, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	var fp []string
	if err := json.Unmarshal(data, &fp); err == nil {
		m := make(map[string]bool, len(fp))
		for _, f := range fp {
			m[f] = true
		}
		b.Fingerprints = m
		return b, nil
	}
	_ = json.Unmarshal(data, &b)
	if b.Fingerprints == nil {
		b.Fingerprints = map[string]bool{}
	}
	return b, nil
}

// FilterByBaseline drops findings whose fingerprints were accepted in a
// previous run.
func FilterByBaseline(findings []model.Finding, b Baseline) []model.Finding {
	if len(b.Fingerprints) == 0 {
		return findings
	}
	var out []model.Finding
	for _, f := range findings {
		if f.Fingerprint != "" && b.Fingerprints[f.Fingerprint] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// WriteBaseline records the fingerprints of the given findings.
func WriteBaseline(path string, findings []model.Finding) error {
	if path == "" {
		return nil
	}
	seen := make(map[string]bool)
	var arr []string
	for _, f := range findings {
		if f.Fingerprint != "" && !seen[f.Fingerprint] {
			seen[f.Fingerprint] = true
			arr = append(arr, f.Fingerprint)
		}
	}
	sort.Strings(arr)
	data, _ := json.MarshalIndent(arr, "", "  ")
	return os.WriteFile(path, data, 0o644)
}
