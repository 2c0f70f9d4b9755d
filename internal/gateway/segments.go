package gateway

import (
	"regexp"
	"strings"
)

// ParagraphSeparator is the literal marker inserted between paragraphs by
// MarkParagraphs, consumed by downstream paragraph-aware renderers.
const ParagraphSeparator = "@@@"

var paragraphBreak = regexp.MustCompile(`\n{2,}`)

// MarkParagraphs splits normalized markdown on blank-line boundaries, trims
// each segment, drops empty segments, and rejoins them with the paragraph
// separator on its own line. Applied only by the immediate OCR path; the
// id-based reprocessing path returns the normalized text unmodified.
func MarkParagraphs(text string) string {
	parts := paragraphBreak.Split(text, -1)

	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}

	return strings.Join(segments, "\n\n"+ParagraphSeparator+"\n\n")
}
