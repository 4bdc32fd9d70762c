package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSnippetMarksFlaggedLine(t *testing.T) {
	content := "one\ntwo\nthree\nfour\nfive\nsix\nseven"
	snippet := ExtractSnippet(content, 4, 2)

	lines := strings.Split(snippet, "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, snippet, ">>>    4 | four")
	assert.Contains(t, snippet, "       2 | two")
	assert.NotContains(t, snippet, "one")
}

func TestExtractSnippetClampsAtBounds(t *testing.T) {
	content := "a\nb"
	assert.NotPanics(t, func() {
		ExtractSnippet(content, 0, 3)
		ExtractSnippet(content, 99, 3)
		ExtractSnippet("", 1, 3)
	})
	assert.Contains(t, ExtractSnippet(content, 99, 3), "b")
}

func TestWindow(t *testing.T) {
	lines := []string{"l1", "l2", "l3", "l4", "l5"}

	w := Window(lines, 3, 1)
	assert.Equal(t, "l2\nl3\nl4", w)

	assert.Equal(t, "l1\nl2", Window(lines, 1, 1))
	assert.Equal(t, strings.Join(lines, "\n"), Window(lines, 3, 50))
	assert.Equal(t, "", Window(nil, 1, 5))
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint("ANCHOR-001", "lib.rs", 10, "Stake")
	b := Fingerprint("ANCHOR-001", "lib.rs", 10, "Stake")
	c := Fingerprint("ANCHOR-001", "lib.rs", 11, "Stake")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
