package plugins

import (
	"context"
	"fmt"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/anchor"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
)

// missingOwnerDetector flags accounts used without verifying the program
// owner field. Any program can create accounts with arbitrary data; the
// typed wrappers verify ownership, raw handles verify nothing.
type missingOwnerDetector struct {
	// downgradeUnchecked lowers UncheckedAccount findings to Low. The type
	// name itself announces the missing check, which some teams treat as an
	// intentional, documented idiom rather than an accident.
	downgradeUnchecked bool
}

func (d *missingOwnerDetector) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:        "ANCHOR-006",
		Name:      "Missing Owner Validation",
		Severity:  model.SeverityHigh,
		Reference: anchorConstraintRef,
	}
}

// Narrow allow-list: only fields the runtime itself validates.
var ownerAllowlist = map[string]struct{}{
	"system_program":           {},
	"token_program":            {},
	"rent":                     {},
	"clock":                    {},
	"associated_token_program": {},
	"sysvar_rent":              {},
	"sysvar_clock":             {},
}

func (d *missingOwnerDetector) Analyze(ctx context.Context, src *anchor.File) ([]model.Finding, error) {
	var findings []model.Finding
	for _, st := range src.Structs {
		for _, field := range st.Fields {
			kind, ok := anchor.RawHandle(field.Type)
			if !ok {
				continue
			}
			if infrastructureField(field.Name, ownerAllowlist) {
				continue
			}
			if rawHandleSuppressed(field) {
				continue
			}

			f := newFinding(d.Meta(), src, field.Line, st.Name,
				fmt.Sprintf("In struct %s: field '%s' uses raw %s without owner validation or CHECK documentation.",
					st.Name, field.Name, kind),
				fmt.Sprintf("Use Account<'info, T> for automatic owner and discriminator checks, or add "+
					"#[account(owner = my_program::ID)] plus a /// CHECK: comment to the %s field.", kind),
			)
			if d.downgradeUnchecked && kind == "UncheckedAccount" {
				f.Severity = model.SeverityLow
			}
			findings = append(findings, f)
		}
	}
	return findings, nil
}
