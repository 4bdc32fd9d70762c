package plugins

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/anchor"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
)

// duplicateMutableDetector flags structs where an init_if_needed field and a
// separately-mutable field resolve to the same element type. Anchor's
// generated duplicate mutable account check excludes fields with init
// constraints, so when the init_if_needed account already exists the same
// account can be passed for both fields.
type duplicateMutableDetector struct{}

func (d *duplicateMutableDetector) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:        "ANCHOR-002",
		Name:      "Duplicate Mutable Account Bypass",
		Severity:  model.SeverityMedium,
		Reference: anchorConstraintRef,
	}
}

var mutConstraintRe = regexp.MustCompile(`\bmut\b`)

func (d *duplicateMutableDetector) Analyze(ctx context.Context, src *anchor.File) ([]model.Finding, error) {
	var findings []model.Finding
	for _, st := range src.Structs {
		type entry struct {
			name string
			base string
			line int
		}
		var initFields, mutFields []entry

		for _, field := range st.Fields {
			attrs := field.AttrText()
			base := anchor.BaseType(field.Type)
			if base == "" {
				// unknown element type, nothing to compare against
				continue
			}
			switch {
			case strings.Contains(attrs, "init_if_needed"):
				initFields = append(initFields, entry{field.Name, base, field.Line})
			case mutConstraintRe.MatchString(attrs):
				mutFields = append(mutFields, entry{field.Name, base, field.Line})
			}
		}
		if len(initFields) == 0 || len(mutFields) == 0 {
			continue
		}

		for _, init := range initFields {
			for _, mut := range mutFields {
				if init.base != mut.base {
					continue
				}
				findings = append(findings, newFinding(d.Meta(), src, init.line, st.Name,
					fmt.Sprintf("In struct %s: init_if_needed field '%s' (%s) coexists with mutable field '%s' (%s). "+
						"The init_if_needed field is excluded from Anchor's duplicate mutable account check.",
						st.Name, init.name, init.base, mut.name, mut.base),
					"Add an explicit duplicate account check in the instruction body: "+
						"require!(init_field.key() != mut_field.key(), CustomError::DuplicateAccount); "+
						"or use plain init instead, which is included in the duplicate check.",
				))
				break
			}
		}
	}
	return findings, nil
}
