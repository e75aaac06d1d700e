package parse

import "strings"

// RankSentinel stands in for a rank that is unknown.
const RankSentinel = "nan"

// NormalizeRank trims raw and maps blank or NaN-like values to RankSentinel.
func NormalizeRank(raw string) string {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "nan", "n/a", "na", "-":
		return RankSentinel
	}
	return s
}
