package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordgate/pkg/automaton"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercase and strip spaces", input: "This Badge is BAD", want: "thisbadgeisbad"},
		{name: "punctuation removed", input: "b-a.d!", want: "bad"},
		{name: "hangul kept", input: "시발 점이었다", want: "시발점이었다"},
		{name: "full width folded", input: "ＢＡＤ１", want: "bad1"},
		{name: "other scripts dropped", input: "日本bad", want: "bad"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input).Normalized)
			assert.Equal(t, tt.want, NormalizeWord(tt.input))
		})
	}
}

func TestNormalize_OffsetsPointAtOriginalRunes(t *testing.T) {
	text := Normalize("a b-c 가")
	require.Equal(t, "abc가", text.Normalized)

	norm := []rune(text.Normalized)
	for i := range norm {
		orig := text.Original[text.OriginalIndex(i)]
		assert.Equal(t, norm[i], fold(orig))
	}
	assert.Equal(t, len(text.Original), text.OriginalIndex(len(norm)))
}

// search is a helper that runs a one-pattern automaton over the normalized text.
func search(t *testing.T, pattern, input string) (*Text, []automaton.Match) {
	t.Helper()
	a, err := automaton.Build([]string{pattern})
	require.NoError(t, err)
	text := Normalize(input)
	return text, a.Search(text.Normalized)
}

func TestToken(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    []string
	}{
		{
			name:    "word containing pattern",
			pattern: "bad",
			input:   "this badge is bad",
			want:    []string{"badge", "bad"},
		},
		{
			name:    "backward expansion",
			pattern: "bad",
			input:   "abadcase here",
			want:    []string{"abadcase"},
		},
		{
			name:    "particle right after match stops expansion",
			pattern: "시발",
			input:   "시발이 뭐야",
			want:    []string{"시발"},
		},
		{
			name:    "non-particle continues to the next particle",
			pattern: "시발",
			input:   "시발점이었다",
			want:    []string{"시발점"},
		},
		{
			name:    "multi-rune particle",
			pattern: "학교",
			input:   "나쁜학교에서 봐",
			want:    []string{"나쁜학교"},
		},
		{
			name:    "punctuation inside the span is dropped from the key",
			pattern: "bad",
			input:   "ba-dge",
			want:    []string{"badge"},
		},
		{
			name:    "letters of other scripts stay in the key",
			pattern: "bad",
			input:   "日本badge",
			want:    []string{"日本badge"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, matches := search(t, tt.pattern, tt.input)
			var got []string
			for _, m := range matches {
				got = append(got, Token(text, m))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsAllowedOccurrence(t *testing.T) {
	allow := NewAllowSet([]string{"Badge", "시발점", "  "})
	assert.Len(t, allow, 2)

	text, matches := search(t, "bad", "this badge is bad")
	require.Len(t, matches, 2)
	assert.True(t, IsAllowedOccurrence(text, matches[0], allow))
	assert.False(t, IsAllowedOccurrence(text, matches[1], allow))

	text, matches = search(t, "시발", "시발점이었다")
	require.Len(t, matches, 1)
	assert.True(t, IsAllowedOccurrence(text, matches[0], allow))

	text, matches = search(t, "시발", "시발놈")
	require.Len(t, matches, 1)
	assert.False(t, IsAllowedOccurrence(text, matches[0], allow))

	assert.False(t, IsAllowedOccurrence(text, matches[0], nil))

	text, matches = search(t, "bad", "日本badge")
	require.Len(t, matches, 1)
	assert.False(t, IsAllowedOccurrence(text, matches[0], allow))
}

func TestWordKey(t *testing.T) {
	assert.Equal(t, "badge", WordKey("Ba-dge!"))
	assert.Equal(t, "日本badge", WordKey("日本ＢＡＤＧＥ"))
	assert.Equal(t, "시발점", WordKey("시발점"))
	assert.Equal(t, "", WordKey(" .- "))
}
