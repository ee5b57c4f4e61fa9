package contact

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// CleanName trims a display name and collapses internal whitespace.
// Names are stored cleaned so that Normalize(name) == strings.ToLower(name).
func CleanName(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Normalize returns the lowercase matching form of a name or key.
func Normalize(s string) string {
	return strings.ToLower(CleanName(s))
}

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// JoinTags builds the stored tag string. Leading '#' markers and blanks are
// dropped and repeats (case-insensitive) keep their first spelling.
func JoinTags(tags []string) string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(t), "#"))
		if t == "" {
			continue
		}
		norm := strings.ToLower(t)
		if seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, t)
	}
	return strings.Join(out, ",")
}

// SplitTags parses a stored tag string.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
