package plugins

import (
	"context"
	"fmt"
	"regexp"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/anchor"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
)

// reallocPayerDetector flags realloc payers that are not signer-verified.
// When account space decreases, Anchor's realloc codegen transfers lamports
// to the payer directly rather than through CPI, so the only signer
// enforcement is the payer field's own type declaration.
type reallocPayerDetector struct{}

func (d *reallocPayerDetector) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:        "ANCHOR-003",
		Name:      "Realloc Payer Missing Signer Verification",
		Severity:  model.SeverityMedium,
		Reference: anchorConstraintRef,
	}
}

var (
	reallocPayerRe    = regexp.MustCompile(`realloc\s*::\s*payer\s*=\s*(\w+)`)
	signerConstraintRe = regexp.MustCompile(`\bsigner\b`)
)

func (d *reallocPayerDetector) Analyze(ctx context.Context, src *anchor.File) ([]model.Finding, error) {
	var findings []model.Finding
	for _, st := range src.Structs {
		byName := make(map[string]anchor.Field, len(st.Fields))
		for _, field := range st.Fields {
			byName[field.Name] = field
		}

		for _, field := range st.Fields {
			attrs := field.AttrText()
			m := reallocPayerRe.FindStringSubmatch(attrs)
			if m == nil {
				continue
			}
			payer, ok := byName[m[1]]
			if !ok {
				// payer not declared in this struct, cannot classify it
				continue
			}
			if anchor.IsSignerType(payer.Type) {
				continue
			}
			if signerConstraintRe.MatchString(payer.AttrText()) {
				continue
			}

			findings = append(findings, newFinding(d.Meta(), src, field.Attr.Line, st.Name,
				fmt.Sprintf("In struct %s: realloc payer '%s' is typed as '%s' instead of Signer<'info>. "+
					"Lamports transferred without signer verification.", st.Name, payer.Name, payer.Type),
				"Change the realloc payer field type to Signer<'info>, or add an explicit #[account(signer)] constraint.",
			))
		}
	}
	return findings, nil
}
