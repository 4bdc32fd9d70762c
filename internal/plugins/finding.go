package plugins

import (
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/anchor"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/util"
)

const anchorConstraintRef = "https://github.com/solana-foundation/anchor/pull/4229"

// newFinding fills the fields every rule reports the same way: location,
// snippet and fingerprint derive from the extraction result, the rest from
// the rule's metadata.
func newFinding(meta model.RuleMeta, src *anchor.File, line int, structName, description, remediation string) model.Finding {
	return model.Finding{
		RuleID:      meta.ID,
		Name:        meta.Name,
		Severity:    meta.Severity,
		File:        src.Path,
		Line:        line,
		Struct:      structName,
		Description: description,
		Remediation: remediation,
		Snippet:     util.ExtractSnippet(src.Content, line, 3),
		Reference:   meta.Reference,
		Fingerprint: util.Fingerprint(meta.ID, src.Path, line, structName),
	}
}
