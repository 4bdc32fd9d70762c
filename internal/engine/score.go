package engine

import "github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"

var severityWeights = map[model.Severity]int{
	model.SeverityCritical: 10,
	model.SeverityHigh:     5,
	model.SeverityMedium:   2,
	model.SeverityLow:      1,
}

// ComputeScore maps the weighted sum of finding severities to a letter grade.
// Deterministic and pure: the same finding sequence always yields the same
// score.
func ComputeScore(findings []model.Finding) model.Score {
	if len(findings) == 0 {
		return model.ScoreA
	}
	total := 0
	for _, f := range findings {
		total += severityWeights[f.Severity]
	}
	switch {
	case total >= 20:
		return model.ScoreF
	case total >= 15:
		return model.ScoreD
	case total >= 10:
		return model.ScoreC
	case total >= 5:
		return model.ScoreB
	default:
		return model.ScoreBPlus
	}
}

// Summarize counts findings per severity bucket and per rule.
func Summarize(findings []model.Finding) model.Summary {
	s := model.Summary{
		Total: len(findings),
		BySeverity: map[model.Severity]int{
			model.SeverityCritical: 0,
			model.SeverityHigh:     0,
			model.SeverityMedium:   0,
			model.SeverityLow:      0,
		},
		ByRule: map[string]int{},
	}
	for _, f := range findings {
		s.BySeverity[f.Severity]++
		s.ByRule[f.RuleID]++
	}
	return s
}
