package plugins

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/anchor"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/util"
)

// initIfNeededDetector flags token accounts accepted via init_if_needed
// without explicit validation of the fields Anchor's reuse path skips.
//
// When init_if_needed encounters an already-existing token account, Anchor
// deserializes it unchecked and validates only mint, owner and token_program.
// delegate, close_authority, state and delegated_amount pass through, so an
// attacker can pre-create the account with those set.
type initIfNeededDetector struct{}

func (d *initIfNeededDetector) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:        "ANCHOR-001",
		Name:      "init_if_needed Incomplete Field Validation",
		Severity:  model.SeverityHigh,
		Reference: anchorConstraintRef,
	}
}

// contextWindow is the line radius searched for companion constraints around
// a triggering attribute. Constraints for one field can legally live on
// sibling fields of the same struct, so the window spans the struct body.
const contextWindow = 30

var (
	tokenConstraintRe      = regexp.MustCompile(`(?:\b|^)token\s*::`)
	assocTokenConstraintRe = regexp.MustCompile(`associated_token\s*::`)

	delegateCheckRe = regexp.MustCompile(`(?s)constraint\s*=\s*[^,]*\.delegate\s*(?:\.is_none\(\)|==\s*(?:None|COption::None))`)
	closeAuthRe     = regexp.MustCompile(`(?s)constraint\s*=\s*[^,]*\.close_authority\s*(?:\.is_none\(\)|==\s*(?:None|COption::None))`)
)

func (d *initIfNeededDetector) Analyze(ctx context.Context, src *anchor.File) ([]model.Finding, error) {
	var findings []model.Finding
	for _, st := range src.Structs {
		for _, field := range st.Fields {
			attrs := field.AttrText()
			if !strings.Contains(attrs, "init_if_needed") {
				continue
			}
			isToken := tokenConstraintRe.MatchString(attrs)
			isAssoc := assocTokenConstraintRe.MatchString(attrs)
			if !isToken && !isAssoc {
				continue
			}

			window := util.Window(src.Lines, field.Attr.Line, contextWindow)
			hasDelegate := delegateCheckRe.MatchString(window)
			hasCloseAuth := closeAuthRe.MatchString(window)
			if hasDelegate && hasCloseAuth {
				continue
			}

			var missing []string
			if !hasDelegate {
				missing = append(missing, "delegate")
			}
			if !hasCloseAuth {
				missing = append(missing, "close_authority")
			}
			kind := "Token"
			if isAssoc {
				kind = "Associated_token"
			}

			findings = append(findings, newFinding(d.Meta(), src, field.Attr.Line, st.Name,
				fmt.Sprintf("%s account accepted via init_if_needed without validation of %s fields.",
					kind, strings.Join(missing, ", ")),
				"Add explicit constraint checks for fields not validated by init_if_needed: "+
					"constraint = account.delegate.is_none(), constraint = account.close_authority.is_none(). "+
					"Alternatively, use plain init instead of init_if_needed if the account should always be newly created.",
			))
		}
	}
	return findings, nil
}
