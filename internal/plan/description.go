package plan

import (
	"encoding/json"
	"regexp"
	"strings"
)

// DescriptionSeparator joins array fragments of a description.
const DescriptionSeparator = " • "

// descriptionKeys are probed in order when a description arrives as an object.
var descriptionKeys = []string{"long", "full", "description", "desc", "details", "summary", "text", "short", "body"}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeDescription flattens a description of any shape into a single
// line of at most maxChars characters. null yields nil, never an error.
func NormalizeDescription(v any, maxChars int) *string {
	if v == nil {
		return nil
	}
	s := collapseWhitespace(descriptionText(v))
	if s == "" {
		return nil
	}
	if maxChars > 0 {
		if r := []rune(s); len(r) > maxChars {
			s = string(r[:maxChars])
		}
	}
	return &s
}

func descriptionText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if frag := strings.TrimSpace(descriptionText(item)); frag != "" {
				parts = append(parts, frag)
			}
		}
		return strings.Join(parts, DescriptionSeparator)
	case map[string]any:
		if picked := Pick(t, descriptionKeys...); picked != nil {
			return descriptionText(picked)
		}
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
	if s, ok := scalarString(v); ok {
		return s
	}
	return ""
}

// collapseWhitespace trims s and collapses internal whitespace runs to one space.
func collapseWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}
