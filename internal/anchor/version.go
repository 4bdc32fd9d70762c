package anchor

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

var (
	anchorDepRe     = regexp.MustCompile(`anchor-lang\s*=\s*["']?([0-9]+\.[0-9]+\.[0-9]+)`)
	anchorDepTblRe  = regexp.MustCompile(`anchor-lang\s*=\s*\{[^}]*version\s*=\s*"([0-9]+\.[0-9]+\.[0-9]+)"`)
)

// DetectVersion sniffs the anchor-lang version from Cargo.toml files under
// root. Returns "" when no manifest declares it.
func DetectVersion(root string) string {
	var version string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if version != "" {
			return filepath.SkipAll
		}
		if d.IsDir() {
			if d.Name() == "target" || d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != "Cargo.toml" {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		content := string(b)
		if m := anchorDepRe.FindStringSubmatch(content); m != nil {
			version = m[1]
		} else if m := anchorDepTblRe.FindStringSubmatch(content); m != nil {
			version = m[1]
		}
		return nil
	})
	return version
}
