package model

import "time"

type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

func ParseSeverity(s string) Severity {
	switch s {
	case "critical", "Critical":
		return SeverityCritical
	case "high", "High":
		return SeverityHigh
	case "medium", "Medium":
		return SeverityMedium
	default:
		return SeverityLow
	}
}

var severityOrder = map[Severity]int{SeverityLow: 1, SeverityMedium: 2, SeverityHigh: 3, SeverityCritical: 4}

func SeverityGTE(a, b Severity) bool {
	return severityOrder[a] >= severityOrder[b]
}

// RuleMeta describes one detector rule.
type RuleMeta struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Severity  Severity `json:"severity"`
	Reference string   `json:"reference"`
}

// Finding is one reported structural issue. Findings are immutable once
// produced; downstream consumers operate on copies of finalized slices.
type Finding struct {
	RuleID      string   `json:"id"`
	Name        string   `json:"name"`
	Severity    Severity `json:"severity"`
	File        string   `json:"file"`
	Line        int      `json:"line"`
	Struct      string   `json:"struct,omitempty"`
	Description string   `json:"description"`
	Remediation string   `json:"fix_recommendation"`
	Snippet     string   `json:"code_snippet,omitempty"`
	Reference   string   `json:"reference"`
	Fingerprint string   `json:"fingerprint,omitempty"`
}

// Diagnostic records a non-fatal degradation, e.g. one detector panicking.
// A diagnostic never turns a scan into an error.
type Diagnostic struct {
	RuleID  string `json:"ruleId,omitempty"`
	File    string `json:"file,omitempty"`
	Message string `json:"message"`
}

// Summary is the per-severity breakdown of a finding sequence. It is derived
// on demand and never mutated in place.
type Summary struct {
	Total      int              `json:"total"`
	BySeverity map[Severity]int `json:"by_severity"`
	ByRule     map[string]int   `json:"by_pattern"`
}

// Score is the letter grade computed from severity-weighted finding counts.
type Score string

const (
	ScoreA     Score = "A"
	ScoreBPlus Score = "B+"
	ScoreB     Score = "B"
	ScoreC     Score = "C"
	ScoreD     Score = "D"
	ScoreF     Score = "F"
)

// ScanReport is one scan run: an ordered finding sequence plus provenance.
type ScanReport struct {
	Target          string        `json:"target"`
	FilesScanned    int           `json:"files_scanned"`
	PatternsChecked int           `json:"patterns_checked"`
	Elapsed         time.Duration `json:"-"`
	ElapsedSeconds  float64       `json:"scan_time_seconds"`
	AnchorVersion   string        `json:"anchor_version,omitempty"`
	SecurityScore   Score         `json:"security_score"`
	Summary         Summary       `json:"summary"`
	Findings        []Finding     `json:"findings"`
	Diagnostics     []Diagnostic  `json:"diagnostics,omitempty"`
}
