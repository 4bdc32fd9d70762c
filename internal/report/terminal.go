package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	ruleStyle   = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	sevCritical = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	sevHigh     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	sevMedium   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	sevLow      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
)

func severityStyle(s model.Severity) lipgloss.Style {
	switch s {
	case model.SeverityCritical:
		return sevCritical
	case model.SeverityHigh:
		return sevHigh
	case model.SeverityMedium:
		return sevMedium
	default:
		return sevLow
	}
}

func scoreStyle(s model.Score) lipgloss.Style {
	switch s {
	case model.ScoreA, model.ScoreBPlus:
		return sevLow
	case model.ScoreB, model.ScoreC:
		return sevMedium
	default:
		return sevCritical
	}
}

// RenderTerminal formats a scan report for human terminal output.
func RenderTerminal(r *model.ScanReport) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("anchor-shield Scan Report") + "\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Target:           %s\n", r.Target)
	fmt.Fprintf(&b, "Files scanned:    %d\n", r.FilesScanned)
	fmt.Fprintf(&b, "Patterns checked: %d\n", r.PatternsChecked)
	fmt.Fprintf(&b, "Scan time:        %.2fs\n", r.ElapsedSeconds)
	if r.AnchorVersion != "" {
		fmt.Fprintf(&b, "Anchor version:   %s\n", r.AnchorVersion)
	}
	fmt.Fprintf(&b, "Security score:   %s\n\n", scoreStyle(r.SecurityScore).Render(string(r.SecurityScore)))

	sev := r.Summary.BySeverity
	fmt.Fprintf(&b, "  %s  %s  %s  %s\n\n",
		sevCritical.Render(fmt.Sprintf("Critical: %d", sev[model.SeverityCritical])),
		sevHigh.Render(fmt.Sprintf("High: %d", sev[model.SeverityHigh])),
		sevMedium.Render(fmt.Sprintf("Medium: %d", sev[model.SeverityMedium])),
		sevLow.Render(fmt.Sprintf("Low: %d", sev[model.SeverityLow])))

	if len(r.Findings) == 0 {
		b.WriteString(okStyle.Render("No vulnerabilities detected.") + "\n\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("Scanned %d files against %d detection patterns.",
			r.FilesScanned, r.PatternsChecked)) + "\n")
	} else {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Findings (%d):", len(r.Findings))) + "\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		for i, f := range r.Findings {
			b.WriteString("\n")
			fmt.Fprintf(&b, "  %s %s - %s\n",
				severityStyle(f.Severity).Render("["+strings.ToUpper(string(f.Severity))+"]"),
				ruleStyle.Render(f.RuleID), f.Name)
			fmt.Fprintf(&b, "  File: %s:%d\n", f.File, f.Line)
			fmt.Fprintf(&b, "  %s\n", f.Description)
			if f.Snippet != "" {
				b.WriteString("\n")
				for _, line := range strings.Split(f.Snippet, "\n") {
					b.WriteString("    " + line + "\n")
				}
			}
			b.WriteString("\n")
			firstLine := strings.SplitN(f.Remediation, "\n", 2)[0]
			fmt.Fprintf(&b, "  %s %s\n", titleStyle.Render("Fix:"), firstLine)
			b.WriteString("  " + dimStyle.Render("Reference: "+f.Reference) + "\n")
			if i < len(r.Findings)-1 {
				b.WriteString("  " + strings.Repeat("-", 56) + "\n")
			}
		}
	}

	b.WriteString("\n" + rule + "\n")
	return b.String()
}
