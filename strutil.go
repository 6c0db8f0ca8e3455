// strutil.go - string utilities (C7); level loading and entity lookup do
// not call them.

package pixelcore

import "strings"

// truncateName clamps a name to the map-descriptor limit of 15 characters
// used by the level JSON format (§6).
func truncateName(s string) string {
	if len(s) <= 15 {
		return s
	}
	return s[:15]
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
