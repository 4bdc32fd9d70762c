package model

import "sort"

// SortFindings orders findings by the stable key (file, line, rule id).
// Detector execution order is unspecified, so callers that need deterministic
// output sort the merged sequence before presenting it.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.RuleID < b.RuleID
	})
}
