package anchor

import (
	"encoding/json"
	"strings"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/cache"
)

// ParseCached is Parse with a content-keyed on-disk cache. Content and line
// slices are rebuilt from the input since only the structural result is stored.
func ParseCached(path, content string) *File {
	key := cache.Key("anchor-ir-v2", path, content)
	if b, ok := cache.Load(key); ok {
		var f File
		if err := json.Unmarshal(b, &f); err == nil {
			f.Content = content
			f.Lines = strings.Split(content, "\n")
			return &f
		}
	}
	f := Parse(path, content)
	if data, err := json.Marshal(f); err == nil {
		_ = cache.Store(key, data)
	}
	return f
}
