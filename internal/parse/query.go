package parse

import "strings"

// LikeEscape is the escape character used in patterns built by LikePattern.
const LikeEscape = `\`

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// FoldQuery prepares a search query for case-insensitive comparison.
func FoldQuery(q string) string {
	return strings.ToLower(q)
}

// LikePattern turns a search query into an unanchored LIKE pattern that
// matches q literally. Compare it against a lowercased column.
func LikePattern(q string) string {
	return "%" + likeReplacer.Replace(FoldQuery(q)) + "%"
}

// NameMatches reports whether name contains q, ignoring case. An empty
// query matches everything.
func NameMatches(name, q string) bool {
	return strings.Contains(strings.ToLower(name), FoldQuery(q))
}
