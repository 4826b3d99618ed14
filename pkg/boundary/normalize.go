// Package boundary maps automaton matches back onto the text a user wrote and
// decides whether the enclosing word is allow-listed.
//
// Matching runs on a normalized copy of the text. Normalization only deletes
// runes, it never reorders them, so every normalized rune is paired with the
// index of the original rune it came from. Boundary expansion works on the
// original runes through that mapping.
package boundary

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

const (
	hangulFirst = 0xAC00 // 가
	hangulLast  = 0xD7A3 // 힣
	hangulBlock = 0xD7AF // end of the Hangul syllables block
)

// Text is a normalized view over an original string.
type Text struct {
	Original   []rune
	Normalized string
	offsets    []int // normalized rune index -> original rune index
}

// Normalize lowercases text, folds full-width forms, and keeps only
// [0-9a-z가-힣]. Everything else, whitespace included, is dropped.
func Normalize(text string) *Text {
	orig := []rune(text)
	t := &Text{
		Original: orig,
		offsets:  make([]int, 0, len(orig)),
	}

	var sb strings.Builder
	sb.Grow(len(text))
	for i, r := range orig {
		n := fold(r)
		if !keep(n) {
			continue
		}
		sb.WriteRune(n)
		t.offsets = append(t.offsets, i)
	}
	t.Normalized = sb.String()
	return t
}

// NormalizeWord returns the normalized form of a single word, as used for
// patterns.
func NormalizeWord(word string) string {
	var sb strings.Builder
	sb.Grow(len(word))
	for _, r := range word {
		n := fold(r)
		if keep(n) {
			sb.WriteRune(n)
		}
	}
	return sb.String()
}

// WordKey lowercases and folds word and drops every rune that is not a word
// rune. Letters of other scripts stay, so "日本badge" never equals "badge".
func WordKey(word string) string {
	var sb strings.Builder
	sb.Grow(len(word))
	for _, r := range word {
		n := fold(r)
		if isWordRune(n) {
			sb.WriteRune(n)
		}
	}
	return sb.String()
}

// OriginalIndex maps a normalized rune offset to the original rune offset.
func (t *Text) OriginalIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(t.offsets) {
		return len(t.Original)
	}
	return t.offsets[i]
}

func fold(r rune) rune {
	if f := width.LookupRune(r).Folded(); f != 0 {
		r = f
	}
	return unicode.ToLower(r)
}

func keep(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= hangulFirst && r <= hangulLast:
		return true
	}
	return false
}

// isWordRune reports whether r continues a word during boundary expansion.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || (r >= hangulFirst && r <= hangulBlock)
}
