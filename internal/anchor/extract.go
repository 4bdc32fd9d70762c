package anchor

import (
	"regexp"
	"strings"
)

// AttributeBlock is one contiguous run of #[...] attributes attached to a
// struct field, with newlines preserved so multi-line constraint lists can be
// matched whole. A block only exists once its delimiters balanced during
// extraction.
type AttributeBlock struct {
	Raw    string `json:"raw"`
	Line   int    `json:"line"`
	Struct string `json:"struct"`
}

// Field is one declaration inside a #[derive(Accounts)] struct. Type is the
// declared type text and may be empty when the declaration could not be
// parsed; detectors treat empty as unknown. Attr is nil when the field has no
// attribute block, which is distinct from an empty one.
type Field struct {
	Name string          `json:"name"`
	Type string          `json:"type"`
	Line int             `json:"line"`
	Attr *AttributeBlock `json:"attr,omitempty"`
	Docs []string        `json:"docs,omitempty"`
}

// AttrText returns the field's attribute text, or "" for an unconstrained field.
func (f Field) AttrText() string {
	if f.Attr == nil {
		return ""
	}
	return f.Attr.Raw
}

var checkDocRe = regexp.MustCompile(`///\s*CHECK\s*:`)

// HasCheckDoc reports whether the field carries a /// CHECK: doc comment, the
// ecosystem marker for a manually verified raw account.
func (f Field) HasCheckDoc() bool {
	for _, d := range f.Docs {
		if checkDocRe.MatchString(d) {
			return true
		}
	}
	return false
}

// Struct is one #[derive(Accounts)] field container.
type Struct struct {
	Name   string  `json:"name"`
	Line   int     `json:"line"`
	Fields []Field `json:"fields"`
}

// File is the read-only extraction result shared by all detectors.
type File struct {
	Path    string   `json:"path"`
	Content string   `json:"-"`
	Lines   []string `json:"-"`
	Structs []Struct `json:"structs"`
}

var (
	deriveAccountsRe = regexp.MustCompile(`#\[derive\(Accounts\)\]`)
	structHeaderRe   = regexp.MustCompile(`^\s*(?:#\[[^\]]*\]\s*)*pub\s+struct\s+(\w+)`)
	fieldDeclRe      = regexp.MustCompile(`^(?:pub\s+)?(\w+)\s*:\s*(.+?),?\s*$`)
)

// Parse extracts every #[derive(Accounts)] struct and its field registry from
// source text. It never fails: unterminated attribute or struct bodies are
// dropped without producing records, and any text yields a (possibly empty)
// File.
func Parse(path, content string) *File {
	f := &File{Path: path, Content: content, Lines: strings.Split(content, "\n")}
	for _, loc := range deriveAccountsRe.FindAllStringIndex(content, -1) {
		pos := loc[1]
		tail := content[pos:]
		if len(tail) > 500 {
			tail = tail[:500]
		}
		hdr := structHeaderRe.FindStringSubmatchIndex(tail)
		if hdr == nil {
			continue
		}
		name := tail[hdr[2]:hdr[3]]
		braceStart := strings.Index(content[pos+hdr[1]:], "{")
		if braceStart < 0 {
			continue
		}
		braceStart += pos + hdr[1]
		braceEnd, ok := balance(content, braceStart, '{', '}')
		if !ok {
			// struct body runs past end of file, skip it and keep going
			continue
		}
		body := content[braceStart+1 : braceEnd]
		startLine := strings.Count(content[:loc[0]], "\n") + 1
		st := Struct{Name: name, Line: startLine}
		st.Fields = parseFields(body, startLine, name)
		f.Structs = append(f.Structs, st)
	}
	return f
}

// balance walks forward from the opening delimiter at open, counting nested
// pairs. Returns the index of the matching close and whether depth returned
// to zero before end of input.
func balance(s string, open int, openCh, closeCh byte) (int, bool) {
	depth := 1
	for i := open + 1; i < len(s); i++ {
		switch s[i] {
		case openCh:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return -1, false
}

// parseFields associates each attribute block with the field declaration that
// follows it, skipping doc comments and blank lines in between. Attribute
// bodies spanning multiple lines are accumulated by paren depth until the
// block closes.
func parseFields(body string, structLine int, structName string) []Field {
	var fields []Field
	lines := strings.Split(body, "\n")

	var attrLines []string
	var docs []string
	attrLine := 0
	inAttr := false
	parenDepth := 0

	reset := func() {
		attrLines = nil
		docs = nil
		attrLine = 0
		inAttr = false
		parenDepth = 0
	}

	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		lineNo := structLine + i + 1

		if strings.HasPrefix(stripped, "///") {
			docs = append(docs, stripped)
			continue
		}

		if inAttr {
			attrLines = append(attrLines, stripped)
			parenDepth += strings.Count(stripped, "(") - strings.Count(stripped, ")")
			if parenDepth <= 0 {
				inAttr = false
				parenDepth = 0
			}
			continue
		}

		if strings.HasPrefix(stripped, "#[") {
			if attrLine == 0 {
				attrLine = lineNo
			}
			attrLines = append(attrLines, stripped)
			parenDepth = strings.Count(stripped, "(") - strings.Count(stripped, ")")
			if parenDepth > 0 {
				inAttr = true
			} else {
				parenDepth = 0
			}
			continue
		}

		if m := fieldDeclRe.FindStringSubmatch(stripped); m != nil && stripped != "" {
			field := Field{
				Name: m[1],
				Type: strings.TrimRight(strings.TrimSpace(m[2]), ","),
				Line: lineNo,
				Docs: docs,
			}
			if len(attrLines) > 0 {
				field.Attr = &AttributeBlock{
					Raw:    strings.Join(attrLines, "\n"),
					Line:   attrLine,
					Struct: structName,
				}
			}
			fields = append(fields, field)
			reset()
			continue
		}

		if stripped != "" && !strings.HasPrefix(stripped, "//") {
			// non-field, non-comment line breaks the association
			reset()
		}
	}
	return fields
}
