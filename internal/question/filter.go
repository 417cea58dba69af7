package question

import "math/rand/v2"

// Filter returns the records matching every non-empty predicate in c, in
// input order. Matching is exact and case-sensitive.
func Filter(records []Record, c Criteria) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if c.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func (c Criteria) matches(r Record) bool {
	return match(c.Year, r.Year) &&
		match(c.Level, r.Level) &&
		match(c.Module, r.Module) &&
		match(c.Difficulty, r.Difficulty)
}

func match(want, got string) bool {
	return want == "" || want == got
}

// Pick selects n items at random without replacement. It is a separate step
// from filtering and must run before paging.
func Pick[T any](items []T, n int, rng *rand.Rand) []T {
	if n <= 0 {
		return []T{}
	}
	if n > len(items) {
		n = len(items)
	}

	pool := make([]T, len(items))
	copy(pool, items)
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
