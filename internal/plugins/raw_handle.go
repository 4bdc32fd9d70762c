package plugins

import (
	"regexp"
	"strings"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/anchor"
)

// Shared predicates for the two raw-handle rules (ANCHOR-004, ANCHOR-006).
// Both trigger on AccountInfo/UncheckedAccount fields; they differ in
// severity and in how wide their well-known-field allow-lists are.

var ownerConstraintRe = regexp.MustCompile(`owner\s*=|constraint\s*=\s*[^,]*\.owner\s*==`)

// infrastructureField reports whether the field name is a load-bearing global
// (program handles, sysvars) that is handled safely by the runtime.
func infrastructureField(name string, allowlist map[string]struct{}) bool {
	trimmed := strings.TrimRight(strings.ToLower(name), "_")
	if _, ok := allowlist[trimmed]; ok {
		return true
	}
	return strings.HasSuffix(trimmed, "_program") || trimmed == "program"
}

// rawHandleSuppressed reports whether an otherwise-triggering raw handle
// carries one of the recognized safe patterns: an explicit signer or owner
// constraint, or a CHECK doc marker.
func rawHandleSuppressed(field anchor.Field) bool {
	attrs := field.AttrText()
	if signerConstraintRe.MatchString(attrs) {
		return true
	}
	if ownerConstraintRe.MatchString(attrs) {
		return true
	}
	return field.HasCheckDoc()
}
