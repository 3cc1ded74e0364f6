package jsonutils

import (
	"regexp"
	"strings"
)

var (
	reFence         = regexp.MustCompile("(?s)```(?:json)?(.*?)```")
	reArray         = regexp.MustCompile(`(?s)\[.*\]`)
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// ExtractArray tries to extract a JSON array from LLM output.
//
// Priority:
// 1. Triple-backtick fenced ```json ... ```
// 2. Any [...] JSON array
//
// It also sanitizes common LLM formatting issues like stray trailing
// commas and invisible Unicode characters.
func ExtractArray(input string) string {
	// Remove BOMs and invisible control characters
	input = strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\uFEFF' || r == '\u200B' || r == '\u200C' || r == '\u200D' {
			return -1 // skip
		}
		return r
	}, input))

	if match := reFence.FindStringSubmatch(input); len(match) > 1 {
		input = strings.TrimSpace(match[1])
	}
	if match := reArray.FindString(input); match != "" {
		input = strings.TrimSpace(match)
	}

	input = reTrailingComma.ReplaceAllString(input, "$1")

	return strings.TrimSpace(input)
}
