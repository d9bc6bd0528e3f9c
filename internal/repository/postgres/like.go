package postgres

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLikePrefix escapes LIKE metacharacters so a logical path prefix
// matches literally. Group and folder names only exclude slashes, so a
// name like "10%" would otherwise act as a wildcard inside the anchored
// prefix scans.
func escapeLikePrefix(s string) string {
	return likeEscaper.Replace(s)
}
