package report

import (
	"bytes"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
)

func toSarifLevel(s model.Severity) string {
	switch s {
	case model.SeverityLow:
		return "note"
	case model.SeverityMedium:
		return "warning"
	default:
		return "error"
	}
}

// ToSARIF serializes findings as a single-run SARIF 2.1.0 report.
func ToSARIF(findings []model.Finding) ([]byte, error) {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, err
	}
	run := sarif.NewRunWithInformationURI("anchor-shield-v2", "https://github.com/mbarreiroaraujo-cloud/anchor-shield-v2")

	seen := map[string]bool{}
	for _, f := range findings {
		if !seen[f.RuleID] {
			seen[f.RuleID] = true
			run.AddRule(f.RuleID).
				WithDescription(f.Name).
				WithHelpURI(f.Reference).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: toSarifLevel(f.Severity),
				})
		}

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.File)).
				WithRegion(sarif.NewRegion().WithStartLine(f.Line)),
		)
		result := sarif.NewRuleResult(f.RuleID).
			WithMessage(sarif.NewTextMessage(f.Description)).
			WithLevel(toSarifLevel(f.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	doc.AddRun(run)

	var buf bytes.Buffer
	if err := doc.PrettyWrite(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
