package match

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Firefox", "firefox"},
		{"  Hello__World  ", "hello world"},
		{"Café Déjà-Vu!!", "cafe deja vu"},
		{"ÅNGSTRÖM", "angstrom"},
		{"Straße", "strasse"},
		{"Visual Studio Code.app", "visual studio code app"},
		{"1Password 7", "1password 7"},
		{"---", ""},
		{"日本語", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Firefox", "  Hello__World  ", "Café Déjà-Vu!!", "ÅNGSTRÖM",
		"a  b\tc\n", "Straße", "x-y_z", "Ⅻ roman", "ﬁle",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestScoreExamples(t *testing.T) {
	exact := Score("firefox", "Firefox")
	prefix := Score("fire", "Firefox")
	sub := Score("ffx", "Firefox")

	assert.Equal(t, 1200, exact)

	assert.GreaterOrEqual(t, prefix, 1000-len("firefox"))
	assert.Less(t, prefix, 1000)
	assert.Less(t, prefix, exact)

	assert.Greater(t, sub, 0)
	assert.Less(t, sub, prefix)
	// f(0) f(4) x(6): gaps 3 + 1
	assert.Equal(t, 620-7*4-7, sub)

	assert.Equal(t, 0, Score("zzz", "Firefox"))
}

func TestScoreTiers(t *testing.T) {
	const candidate = "Google Chrome" // normalized length 13

	tests := []struct {
		query string
		tier  Tier
		score int
	}{
		{"google chrome", TierExact, 1200},
		{"GOOGLE-CHROME", TierExact, 1200},
		{"goo", TierPrefix, 1000 - 13},
		{"chr", TierWordPrefix, 860 - 13},
		{"ogle", TierSubstring, 760 - 13},
		{"gchr", TierSubsequence, 620 - 7*6 - 13},
		{"google chrone", TierTypo, 520 - 120 - 13},
		{"safari", TierNone, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			score, tier := Explain(tt.query, candidate)
			assert.Equal(t, tt.tier, tier)
			assert.Equal(t, tt.score, score)
			assert.Equal(t, score, Score(tt.query, candidate))
		})
	}
}

func TestScoreTierMonotonicity(t *testing.T) {
	const candidate = "Google Chrome"
	ordered := []string{"google chrome", "goo", "chr", "ogle", "gchr", "google chrone"}

	for i := 1; i < len(ordered); i++ {
		higher := Score(ordered[i-1], candidate)
		lower := Score(ordered[i], candidate)
		assert.Greater(t, higher, lower, "%q should outrank %q", ordered[i-1], ordered[i])
		assert.Greater(t, lower, 0)
	}
}

func TestScoreTypoBoundary(t *testing.T) {
	// None of these embed as a subsequence of "firefox", so only the
	// typo tier can match.
	assert.Equal(t, 1, Levenshtein("firefex", "firefox"))
	assert.Equal(t, 520-120-7, Score("firefex", "Firefox"))

	assert.Equal(t, 2, Levenshtein("firafex", "firefox"))
	assert.Greater(t, Score("firafex", "Firefox"), 0)

	assert.Equal(t, 3, Levenshtein("farafex", "firefox"))
	assert.Equal(t, 0, Score("farafex", "Firefox"))
}

func TestScoreTypoLengthBounds(t *testing.T) {
	candidate24 := "abcdefghijklmnopqrstuvwx"
	query24 := "zbcdefghijklmnopqrstuvwx"
	assert.Equal(t, 520-120-24, Score(query24, candidate24))

	candidate25 := candidate24 + "y"
	query25 := query24 + "y"
	assert.Equal(t, 0, Score(query25, candidate25), "query longer than 24 skips typo tier")

	longCandidate := strings.Repeat("ab", 33) // 66 runes
	longQuery := "zz"
	assert.Equal(t, 0, Score(longQuery, longCandidate))
}

func TestScoreEmptyInputs(t *testing.T) {
	assert.Equal(t, 0, Score("", "Firefox"))
	assert.Equal(t, 0, Score("firefox", ""))
	assert.Equal(t, 0, Score("!!!", "Firefox"))
	assert.Equal(t, 0, Score("fire", "???"))
}

func TestScoreNeverNegative(t *testing.T) {
	long := strings.Repeat("x", 1000) + " tail"
	assert.Equal(t, 0, Score("xxx", long), "prefix score bottoms out at zero")
	assert.Equal(t, 0, Score("tl", long))
}

func TestSubsequence(t *testing.T) {
	assert.Equal(t, 620-7*2-5, Subsequence("ace", "abcde"))
	assert.Equal(t, 620-5, Subsequence("abc", "abcde"))
	assert.Equal(t, 0, Subsequence("aec", "abcde"))
	assert.Equal(t, 0, Subsequence("", "abcde"))
}

func TestSubsequenceCanRankBelowTypo(t *testing.T) {
	// A genuine subsequence with wide gaps can score below a typo match;
	// the formula is kept as is.
	candidate := "a-" + strings.Repeat("q", 40) + " z"
	score, tier := Explain("az", candidate)
	assert.Equal(t, TierSubsequence, tier)
	assert.Less(t, score, TypoBase-EditPenalty)
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"abc", "", 3},
		{"same", "same", 0},
		{"Café", "cafe", 0},
		{"flaw", "lawn", 2},
	}

	for _, tt := range tests {
		t.Run(tt.a+"→"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "exact", TierExact.String())
	assert.Equal(t, "word-prefix", TierWordPrefix.String())
	assert.Equal(t, "none", Tier(99).String())
}

func BenchmarkScore(b *testing.B) {
	candidates := []string{
		"Firefox", "Google Chrome", "Visual Studio Code", "System Settings",
		"Activity Monitor", "Terminal", "1Password 7", "Microsoft Excel",
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range candidates {
			Score("vsc", c)
		}
	}
}
