package util

import (
	"regexp"
	"strings"
)

var (
	controlChars   = regexp.MustCompile(`[\x00-\x08\x0B-\x0C\x0E-\x1F\x7F]`)
	spaceRuns      = regexp.MustCompile(`[ \t]+`)
	newlineRuns    = regexp.MustCompile(`\n{3,}`)
	crlfNormalizer = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// SanitizeText normalizes model output for safe JSON/terminal display:
// strips control characters (keeping newlines and tabs), collapses space
// runs, and caps consecutive blank lines at one.
func SanitizeText(text string) string {
	if text == "" {
		return ""
	}

	text = crlfNormalizer.Replace(text)
	text = controlChars.ReplaceAllString(text, "")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = newlineRuns.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
