package terminal

import (
	"sort"
	"strings"
)

// Scored pairs a candidate index with its fuzzy score.
type Scored struct {
	Index int
	Score float64
}

// Score rates how well query matches candidate as an in-order, case-folded
// subsequence. An empty query scores 1. A query that is not a subsequence
// of the candidate scores 0.
func Score(candidate, query string) float64 {
	if query == "" {
		return 1.0
	}
	if candidate == "" {
		return 0
	}

	q := []rune(strings.ToLower(query))
	qi, matches, gap := 0, 0, 0
	for _, r := range strings.ToLower(candidate) {
		if qi < len(q) && r == q[qi] {
			matches++
			qi++
			continue
		}
		if matches > 0 {
			gap++
		}
	}
	if matches == 0 || qi < len(q) {
		return 0
	}

	n := float64(len(q))
	ratio := float64(matches) / n
	completion := (float64(qi) / n) * (float64(qi) / n)

	penalty := 0.0
	if matches > 1 {
		penalty = float64(gap) / float64(max(matches-1, 1))
	}
	return ratio * completion * max(1-penalty/10, 0)
}

// Rank scores every candidate against query, best first. Ties keep their
// input order.
func Rank(candidates []string, query string) []Scored {
	out := make([]Scored, len(candidates))
	for i, c := range candidates {
		out[i] = Scored{Index: i, Score: Score(c, query)}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score > out[b].Score
	})
	return out
}
