package result

import "sort"

// Sort orders matches in place by the total order defined in Less,
// satisfying spec §8 P6 (global ordering) and §4.7 step 7.
func Sort(matches []MatchRecord) {
	sort.SliceStable(matches, func(i, j int) bool {
		return Less(matches[i], matches[j])
	})
}

// Truncate applies a global match cap after sorting (spec §4.7 step 8,
// §8 P7). A zero or negative n means no cap.
func Truncate(matches []MatchRecord, n int) []MatchRecord {
	if n <= 0 || len(matches) <= n {
		return matches
	}
	return matches[:n]
}
