package plugins

import (
	"context"
	"fmt"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/anchor"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
)

// typeCosplayDetector flags raw handles used to carry account data without a
// discriminator check. Account<'info, T> verifies the 8-byte discriminator
// and the program owner; raw AccountInfo skips both, so an account from
// another program with a matching byte layout passes.
type typeCosplayDetector struct{}

func (d *typeCosplayDetector) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:        "ANCHOR-004",
		Name:      "Account Type Cosplay (Missing Discriminator Check)",
		Severity:  model.SeverityMedium,
		Reference: anchorConstraintRef,
	}
}

// Wider allow-list than ANCHOR-006: authority/payer style fields are usually
// lamport sources or signers, not deserialized state.
var cosplayAllowlist = map[string]struct{}{
	"system_program":           {},
	"token_program":            {},
	"rent":                     {},
	"clock":                    {},
	"associated_token_program": {},
	"authority":                {},
	"payer":                    {},
	"owner":                    {},
	"signer":                   {},
	"fee_payer":                {},
	"rent_sysvar":              {},
}

func (d *typeCosplayDetector) Analyze(ctx context.Context, src *anchor.File) ([]model.Finding, error) {
	var findings []model.Finding
	for _, st := range src.Structs {
		for _, field := range st.Fields {
			kind, ok := anchor.RawHandle(field.Type)
			if !ok {
				continue
			}
			if infrastructureField(field.Name, cosplayAllowlist) {
				continue
			}
			if rawHandleSuppressed(field) {
				continue
			}

			findings = append(findings, newFinding(d.Meta(), src, field.Line, st.Name,
				fmt.Sprintf("In struct %s: field '%s' uses raw %s without owner or discriminator verification. "+
					"An attacker can substitute a fake account from another program.", st.Name, field.Name, kind),
				fmt.Sprintf("Replace %s<'info> with Account<'info, T> which automatically checks discriminator and owner. "+
					"If the raw type is necessary, add constraint = account.owner == &expected_program::ID and a /// CHECK: comment.", kind),
			))
		}
	}
	return findings, nil
}
