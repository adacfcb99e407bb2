package filter

import (
	"regexp"
	"strings"
)

var keywordPattern = regexp.MustCompile(`^[a-zA-Z0-9\s,]+$`)

// IsValidKeyword reports whether k contains only letters, digits, spaces and commas.
func IsValidKeyword(k string) bool {
	return keywordPattern.MatchString(k)
}

// ParseKeywords splits comma separated input into trimmed, valid keywords.
// Invalid and blank entries are dropped.
func ParseKeywords(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || !IsValidKeyword(p) {
			continue
		}
		result = append(result, p)
	}
	return result
}
