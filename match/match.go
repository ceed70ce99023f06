// Package match scores a free-text query against a single candidate string.
//
// Score is a pure function: both inputs are normalized the same way and the
// first matching tier decides the score. Higher is more relevant; 0 means
// the candidate is excluded.
//
// # Tiers
//
//	exact         1200
//	prefix        1000 - len(candidate)
//	word prefix    860 - len(candidate)
//	substring      760 - len(candidate)
//	subsequence    620 - 7*gaps - len(candidate)
//	typo (≤2 edits) 520 - 120*distance - len(candidate)
//
// Lengths are rune counts of the normalized candidate. The typo tier only
// runs for queries up to 24 runes against candidates up to 64 runes.
package match

import (
	"strings"
)

// Tier identifies which matching strategy produced a score.
type Tier int

const (
	TierNone Tier = iota
	TierTypo
	TierSubsequence
	TierSubstring
	TierWordPrefix
	TierPrefix
	TierExact
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierPrefix:
		return "prefix"
	case TierWordPrefix:
		return "word-prefix"
	case TierSubstring:
		return "substring"
	case TierSubsequence:
		return "subsequence"
	case TierTypo:
		return "typo"
	default:
		return "none"
	}
}

// Base scores per tier.
const (
	ExactScore       = 1200
	PrefixBase       = 1000
	WordPrefixBase   = 860
	SubstringBase    = 760
	SubsequenceBase  = 620
	TypoBase         = 520
	GapPenalty       = 7
	EditPenalty      = 120
	MaxTypoDistance  = 2
	MaxTypoQueryLen  = 24
	MaxTypoTargetLen = 64
)

// Score returns the relevance of candidate for query, or 0 for no match.
func Score(query, candidate string) int {
	score, _ := Explain(query, candidate)
	return score
}

// Explain is Score plus the tier that produced the score.
func Explain(query, candidate string) (int, Tier) {
	q := Normalize(query)
	c := Normalize(candidate)
	if q == "" || c == "" {
		return 0, TierNone
	}
	return scoreNormalized([]rune(q), []rune(c), q, c)
}

func scoreNormalized(qr, cr []rune, q, c string) (int, Tier) {
	clen := len(cr)

	if q == c {
		return ExactScore, TierExact
	}
	if strings.HasPrefix(c, q) {
		return positive(PrefixBase-clen, TierPrefix)
	}
	if wordPrefix(q, c) {
		return positive(WordPrefixBase-clen, TierWordPrefix)
	}
	if strings.Contains(c, q) {
		return positive(SubstringBase-clen, TierSubstring)
	}
	if s := subsequence(qr, cr); s > 0 {
		return s, TierSubsequence
	}

	if len(qr) <= MaxTypoQueryLen && clen <= MaxTypoTargetLen {
		distance := levenshtein(qr, cr)
		if distance <= MaxTypoDistance {
			if s := TypoBase - distance*EditPenalty - clen; s > 0 {
				return s, TierTypo
			}
		}
	}

	return 0, TierNone
}

// positive keeps scores non-negative; very long candidates bottom out at 0.
func positive(score int, tier Tier) (int, Tier) {
	if score <= 0 {
		return 0, TierNone
	}
	return score, tier
}

// wordPrefix reports whether any space-separated token of c starts with q.
func wordPrefix(q, c string) bool {
	for _, word := range strings.Split(c, " ") {
		if strings.HasPrefix(word, q) {
			return true
		}
	}
	return false
}
