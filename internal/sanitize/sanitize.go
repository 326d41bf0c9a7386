// Package sanitize normalizes user text on its way into storage, into model
// prompts, and back out to clients.
//
// Three boundaries, three treatments: CleanText strips XSS vectors before
// text is stored, ForPrompt neutralizes prompt-injection material before
// text is embedded in a model prompt, and ModelOutput reduces model HTML to
// a fixed allowlist before it reaches a browser.
package sanitize

import (
	"context"
	"regexp"
	"strings"

	"github.com/mdombrov-33/go-promptguard/detector"

	dErrors "inkpad/pkg/domain-errors"
)

// MaxNoteLength caps stored note text. Anything longer is rejected, not
// truncated, so the author knows their content did not survive intact.
const MaxNoteLength = 50000

var (
	scriptBlockRe  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	eventHandlerRe = regexp.MustCompile(`(?i)\bon\w+\s*=\s*["'][^"']*["']`)
	jsProtocolRe   = regexp.MustCompile(`(?i)javascript:`)
	dataHTMLRe     = regexp.MustCompile(`(?i)data:text/html`)
)

// Closing fences matched case-insensitively; an attacker typing </NOTE>
// must not escape the prompt structure any more than </note> would. The
// plural form covers the wrapper around the whole note block, not just the
// per-note fence.
var closingFenceRe = regexp.MustCompile(`(?i)</(notes?|system|prompt)>`)

var injectionPhraseRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+previous\s+instructions`),
	regexp.MustCompile(`(?i)ignore\s+all\s+previous\s+instructions`),
	regexp.MustCompile(`(?i)disregard\s+previous\s+instructions`),
	regexp.MustCompile(`(?i)forget\s+previous\s+instructions`),
	regexp.MustCompile(`(?i)system:\s*`),
}

const (
	redactedMarker = "[REDACTED]"
	filteredMarker = "[FILTERED]"
)

// promptGuard runs pattern and statistical detectors only, no LLM judge,
// keeping detection in-process and sub-millisecond. Input length covers the
// largest storable note.
var promptGuard = detector.New(
	detector.WithThreshold(0.7),
	detector.WithAllDetectors(),
	detector.WithMaxInputLength(MaxNoteLength+1000),
)

// detectInjection is a seam for tests; production always uses promptGuard.
var detectInjection = func(ctx context.Context, text string) bool {
	result := promptGuard.Detect(ctx, text)
	return !result.Safe
}

// CleanText strips XSS vectors from user text before storage: script blocks
// with their content, inline event handlers, and javascript:/data:text/html
// protocol strings. The remainder is whitespace-trimmed. Plain prose passes
// through unchanged.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	cleaned := scriptBlockRe.ReplaceAllString(text, "")
	cleaned = eventHandlerRe.ReplaceAllString(cleaned, "")
	cleaned = jsProtocolRe.ReplaceAllString(cleaned, "")
	cleaned = dataHTMLRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// ValidateNoteText enforces the length cap. Empty text is valid: users may
// save empty notes.
func ValidateNoteText(text string) error {
	if len(text) > MaxNoteLength {
		return dErrors.Newf(dErrors.CodeInvalidInput, "note exceeds maximum length of %d characters", MaxNoteLength)
	}
	return nil
}

// ForPrompt neutralizes prompt-injection material before text is embedded
// inside prompt fences. Closing fence tags become [REDACTED] and known
// injection phrases become [FILTERED]; if the statistical detector still
// flags the remainder, the whole body is replaced rather than risk a partial
// bypass. The output can never terminate a fence early.
func ForPrompt(ctx context.Context, text string) string {
	if text == "" {
		return ""
	}

	sanitized := closingFenceRe.ReplaceAllString(text, redactedMarker)
	for _, re := range injectionPhraseRes {
		sanitized = re.ReplaceAllString(sanitized, filteredMarker)
	}

	if detectInjection(ctx, sanitized) {
		return filteredMarker
	}
	return sanitized
}
