package anchor

import "regexp"

var (
	accountTypeRe = regexp.MustCompile(`(?:Interface)?Account\s*<\s*'[^,]+,\s*(\w+)`)
	rawHandleRe   = regexp.MustCompile(`^(AccountInfo|UncheckedAccount)\s*<`)
	signerTypeRe  = regexp.MustCompile(`^Signer\s*<`)
)

// BaseType extracts the element type from Account<'info, T> or
// InterfaceAccount<'info, T>, including boxed forms. Returns "" when the
// declared type does not resolve to a typed account wrapper; callers must not
// assume anything about such fields.
func BaseType(typeText string) string {
	m := accountTypeRe.FindStringSubmatch(typeText)
	if m == nil {
		return ""
	}
	return m[1]
}

// RawHandle reports whether the declared type is an unvalidated handle and,
// when it is, which kind.
func RawHandle(typeText string) (string, bool) {
	m := rawHandleRe.FindStringSubmatch(typeText)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsSignerType reports whether the declared type is the signer-verified wrapper.
func IsSignerType(typeText string) bool {
	return signerTypeRe.MatchString(typeText)
}
