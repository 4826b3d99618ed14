package boundary

import (
	"wordgate/pkg/automaton"
)

// particles are Korean postpositions that end a word during forward expansion.
var particles = [][]rune{
	[]rune("이"), []rune("가"), []rune("을"), []rune("를"), []rune("은"),
	[]rune("는"), []rune("에"), []rune("에서"), []rune("로"), []rune("으로"),
}

// AllowSet is an immutable set of whole-word keys (see WordKey).
type AllowSet map[string]struct{}

// NewAllowSet keys words into a set. Words with no word runes are skipped.
func NewAllowSet(words []string) AllowSet {
	s := make(AllowSet, len(words))
	for _, w := range words {
		if n := WordKey(w); n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

func (s AllowSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Expand widens a match to the enclosing word of the original text and
// returns the word's [start, end) rune range.
func Expand(t *Text, m automaton.Match) (int, int) {
	start := t.OriginalIndex(m.Start)
	end := t.OriginalIndex(m.End) + 1
	if end > len(t.Original) {
		end = len(t.Original)
	}

	for start > 0 && isWordRune(t.Original[start-1]) {
		start--
	}
	for end < len(t.Original) && isWordRune(t.Original[end]) {
		if hasParticle(t.Original[end:]) {
			break
		}
		end++
	}
	return start, end
}

// Token returns the allow-list key of the word enclosing a match.
func Token(t *Text, m automaton.Match) string {
	start, end := Expand(t, m)
	return WordKey(string(t.Original[start:end]))
}

// IsAllowedOccurrence reports whether the word enclosing m is allow-listed.
func IsAllowedOccurrence(t *Text, m automaton.Match, allow AllowSet) bool {
	if len(allow) == 0 {
		return false
	}
	return allow.Contains(Token(t, m))
}

func hasParticle(rest []rune) bool {
	for _, p := range particles {
		if len(rest) < len(p) {
			continue
		}
		match := true
		for i, r := range p {
			if rest[i] != r {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
