package domain

import "maps"

// FilterFatal returns a new Dataset holding only the fatal records of d, in
// their original order. The input is never modified and the result shares no
// memory with it, Extra maps included. An empty, non-nil Dataset is returned
// when nothing matches.
func FilterFatal(d Dataset) Dataset {
	out := make(Dataset, 0, countFatal(d))
	for _, r := range d {
		if r.IsFatal() {
			r.Extra = maps.Clone(r.Extra)
			out = append(out, r)
		}
	}
	return out
}

// CountBySeverity tallies records per severity value.
func CountBySeverity(d Dataset) map[string]int {
	counts := make(map[string]int)
	for _, r := range d {
		counts[r.Severity]++
	}
	return counts
}

func countFatal(d Dataset) int {
	n := 0
	for _, r := range d {
		if r.IsFatal() {
			n++
		}
	}
	return n
}
