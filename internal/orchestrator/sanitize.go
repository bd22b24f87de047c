package orchestrator

import (
	"regexp"
	"strings"
)

// Role identifiers must never leak into text the user sees; a reply opening
// with "Student:" breaks the teach-back immersion. The filter strips
// leading speaker labels and inline role self-references.
var (
	leadingLabel = regexp.MustCompile(`(?im)^\s*(?:the\s+)?(?:student|evaluator|controller|examiner|assistant|system)\s*(?:role)?\s*[:>\-]\s*`)
	inlineRole   = regexp.MustCompile(`(?i)\bas\s+(?:the|an?)\s+(?:student|evaluator|controller|examiner)\s*(?:role)?[,:]?\s*`)
)

func SanitizeRoleNames(text string) string {
	text = leadingLabel.ReplaceAllString(text, "")
	text = inlineRole.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
