package plugins

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/anchor"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
)

// closeReinitDetector flags account types that appear under both a close
// constraint and init_if_needed within one file. After close zeroes an
// account, init_if_needed can revive it with attacker-funded state.
type closeReinitDetector struct{}

func (d *closeReinitDetector) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:        "ANCHOR-005",
		Name:      "Close + Reinit Lifecycle Attack",
		Severity:  model.SeverityMedium,
		Reference: anchorConstraintRef,
	}
}

var closeConstraintRe = regexp.MustCompile(`\bclose\s*=`)

type fieldRef struct {
	structName string
	fieldName  string
	line       int
}

func (d *closeReinitDetector) Analyze(ctx context.Context, src *anchor.File) ([]model.Finding, error) {
	closeTypes := map[string]fieldRef{}
	initTypes := map[string]fieldRef{}

	for _, st := range src.Structs {
		for _, field := range st.Fields {
			base := anchor.BaseType(field.Type)
			if base == "" {
				continue
			}
			attrs := field.AttrText()
			if closeConstraintRe.MatchString(attrs) {
				closeTypes[base] = fieldRef{st.Name, field.Name, field.Line}
			}
			if strings.Contains(attrs, "init_if_needed") {
				initTypes[base] = fieldRef{st.Name, field.Name, field.Line}
			}
		}
	}

	var overlapping []string
	for base := range closeTypes {
		if _, ok := initTypes[base]; ok {
			overlapping = append(overlapping, base)
		}
	}
	sort.Strings(overlapping)

	var findings []model.Finding
	for _, base := range overlapping {
		cl := closeTypes[base]
		in := initTypes[base]
		findings = append(findings, newFinding(d.Meta(), src, in.line, in.structName,
			fmt.Sprintf("Account type '%s' is used with close (in %s.%s, line %d) and init_if_needed "+
				"(in %s.%s, line %d). Attacker can close and revive the account.",
				base, cl.structName, cl.fieldName, cl.line, in.structName, in.fieldName, in.line),
			"Use plain init instead of init_if_needed, or add lifecycle state tracking: constraint = !account.is_closed",
		))
	}
	return findings, nil
}
