package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
)

func sampleReport() *model.ScanReport {
	findings := []model.Finding{
		{
			RuleID:      "ANCHOR-001",
			Name:        "init_if_needed Incomplete Field Validation",
			Severity:    model.SeverityHigh,
			File:        "programs/vault/src/lib.rs",
			Line:        12,
			Struct:      "Stake",
			Description: "Token account accepted via init_if_needed without validation of delegate, close_authority fields.",
			Remediation: "Add explicit constraint checks.",
			Reference:   "https://github.com/solana-foundation/anchor/pull/4229",
			Fingerprint: "abc123",
		},
		{
			RuleID:      "ANCHOR-006",
			Name:        "Missing Owner Validation",
			Severity:    model.SeverityLow,
			File:        "programs/vault/src/lib.rs",
			Line:        20,
			Description: "raw handle",
			Remediation: "Use Account<'info, T>.",
		},
	}
	return &model.ScanReport{
		Target:          "programs/vault",
		FilesScanned:    1,
		PatternsChecked: 6,
		SecurityScore:   model.ScoreB,
		Summary: model.Summary{
			Total: 2,
			BySeverity: map[model.Severity]int{
				model.SeverityCritical: 0,
				model.SeverityHigh:     1,
				model.SeverityMedium:   0,
				model.SeverityLow:      1,
			},
			ByRule: map[string]int{"ANCHOR-001": 1, "ANCHOR-006": 1},
		},
		Findings: findings,
	}
}

func TestToSARIF(t *testing.T) {
	data, err := ToSARIF(sampleReport().Findings)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "2.1.0", doc["version"])

	runs, ok := doc["runs"].([]any)
	require.True(t, ok)
	require.Len(t, runs, 1)

	run := runs[0].(map[string]any)
	results := run["results"].([]any)
	require.Len(t, results, 2)

	first := results[0].(map[string]any)
	assert.Equal(t, "ANCHOR-001", first["ruleId"])
	assert.Equal(t, "error", first["level"], "High maps to error")
	second := results[1].(map[string]any)
	assert.Equal(t, "note", second["level"], "Low maps to note")
}

func TestToJSONIncludesSummary(t *testing.T) {
	data, err := ToJSON(sampleReport())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "B", decoded["security_score"])
	assert.Contains(t, decoded, "summary")
	assert.Contains(t, decoded, "findings")
}

func TestRenderTerminal(t *testing.T) {
	out := RenderTerminal(sampleReport())
	assert.Contains(t, out, "anchor-shield Scan Report")
	assert.Contains(t, out, "ANCHOR-001")
	assert.Contains(t, out, "programs/vault/src/lib.rs:12")
	assert.Contains(t, out, "Fix:")
	assert.Contains(t, out, "High: 1")
}

func TestRenderTerminalClean(t *testing.T) {
	r := sampleReport()
	r.Findings = nil
	r.Summary = model.Summary{BySeverity: map[model.Severity]int{}}
	r.SecurityScore = model.ScoreA

	out := RenderTerminal(r)
	assert.Contains(t, out, "No vulnerabilities detected.")
}

func TestToHTML(t *testing.T) {
	data, err := ToHTML(sampleReport())
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "ANCHOR-001")
	assert.Contains(t, html, "Missing Owner Validation")
}
