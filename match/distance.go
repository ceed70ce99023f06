package match

// Levenshtein returns the edit distance between the normalized forms of a and b.
func Levenshtein(a, b string) int {
	return levenshtein([]rune(Normalize(a)), []rune(Normalize(b)))
}

// levenshtein computes unit-cost insert/delete/substitute distance using two
// rolling rows.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// Subsequence returns the subsequence-tier score of query against candidate
// after normalization, or 0 when query cannot be embedded in order.
func Subsequence(query, candidate string) int {
	return subsequence([]rune(Normalize(query)), []rune(Normalize(candidate)))
}

// subsequence embeds q into c greedily left to right and penalizes the
// characters skipped between consecutive matches. A result <= 0 means no
// usable match.
func subsequence(q, c []rune) int {
	if len(q) == 0 || len(c) == 0 {
		return 0
	}

	qi := 0
	last := -1
	gaps := 0
	for ci := 0; ci < len(c) && qi < len(q); ci++ {
		if q[qi] != c[ci] {
			continue
		}
		if last >= 0 {
			gaps += max(0, ci-last-1)
		}
		last = ci
		qi++
	}

	if qi != len(q) {
		return 0
	}
	return max(0, SubsequenceBase-gaps*GapPenalty-len(c))
}
