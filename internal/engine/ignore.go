package engine

import (
	"path/filepath"
	"strings"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/config"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
)

// applyIgnores filters findings against config ignore rules.
func applyIgnores(findings []model.Finding, cfg config.Config) []model.Finding {
	if len(cfg.Ignore) == 0 {
		return findings
	}
	var out []model.Finding
	for _, f := range findings {
		if isIgnored(f, cfg) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func isIgnored(f model.Finding, cfg config.Config) bool {
	for _, ig := range cfg.Ignore {
		if ig.Rule != "" && !strings.EqualFold(ig.Rule, f.RuleID) {
			continue
		}
		if ig.Path != "" {
			if !strings.HasPrefix(filepath.ToSlash(f.File), filepath.ToSlash(ig.Path)) {
				continue
			}
		}
		return true
	}
	return false
}

// applyInlineIgnores drops findings suppressed by a comment within a few
// lines above the finding location.
// Format: // anchor-shield:ignore RULE_ID reason="..."
func applyInlineIgnores(findings []model.Finding, content string) []model.Finding {
	if !strings.Contains(content, "anchor-shield:ignore") {
		return findings
	}
	lines := strings.Split(content, "\n")
	var out []model.Finding
	for _, f := range findings {
		if hasInlineSuppression(lines, f.RuleID, f.Line) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func hasInlineSuppression(lines []string, ruleID string, line int) bool {
	from := line - 1 - 5
	if from < 0 {
		from = 0
	}
	to := line
	if to > len(lines) {
		to = len(lines)
	}
	needle := "anchor-shield:ignore " + ruleID
	for i := from; i < to; i++ {
		if strings.Contains(lines[i], needle) {
			return true
		}
	}
	return false
}
