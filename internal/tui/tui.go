package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	detailStyle   = lipgloss.NewStyle().Faint(true).PaddingLeft(4)
)

type modelT struct {
	findings []model.Finding
	cursor   int
	expanded bool
}

func initialModel(findings []model.Finding) modelT { return modelT{findings: findings} }

func (m modelT) Init() tea.Cmd { return nil }

func (m modelT) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.findings)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.expanded = !m.expanded
	}
	return m, nil
}

func (m modelT) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Findings (%d)", len(m.findings))) + "\n\n")
	if len(m.findings) == 0 {
		b.WriteString("No vulnerabilities detected.\n")
	}
	for i, f := range m.findings {
		line := fmt.Sprintf("%s [%s] %s:%d %s", f.RuleID, f.Severity, f.File, f.Line, f.Name)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
		if i == m.cursor && m.expanded {
			b.WriteString(detailStyle.Render(f.Description) + "\n")
			if f.Snippet != "" {
				b.WriteString(detailStyle.Render(f.Snippet) + "\n")
			}
			b.WriteString(detailStyle.Render("Fix: "+f.Remediation) + "\n")
		}
	}
	b.WriteString("\nj/k move · enter expand · q quit\n")
	return b.String()
}

// Run launches an interactive findings browser.
func Run(findings []model.Finding) error {
	p := tea.NewProgram(initialModel(findings))
	_, err := p.Run()
	return err
}
