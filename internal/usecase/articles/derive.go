package articles

import "strings"

const (
	titleFallbackRunes = 20
	previewRunes       = 50
	ellipsis           = "..."
)

func isTerminator(r rune) bool {
	switch r {
	case '.', '。', '!', '?':
		return true
	}
	return false
}

// deriveTitlePreview derives the list title and preview from raw article text.
// Title runs up to and including the first terminal punctuation mark; with no
// terminator it is the first 20 runes plus an ellipsis when truncated.
// Preview is up to 50 runes following the title boundary, leading whitespace
// dropped.
func deriveTitlePreview(content string) (title, preview string) {
	runes := []rune(content)
	boundary := -1
	for i, r := range runes {
		if isTerminator(r) {
			boundary = i + 1
			break
		}
	}

	if boundary < 0 {
		if len(runes) > titleFallbackRunes {
			title = string(runes[:titleFallbackRunes]) + ellipsis
		} else {
			title = string(runes)
		}
		preview = takeRunes(strings.TrimLeft(content, " \t\n"), previewRunes)
		return title, preview
	}

	title = string(runes[:boundary])
	rest := runes[boundary:]
	// A newline right after the terminator belongs to the boundary, not the
	// preview.
	if len(rest) > 0 && rest[0] == '\n' {
		rest = rest[1:]
	}
	preview = takeRunes(strings.TrimLeft(string(rest), " \t\n"), previewRunes)
	return title, preview
}

func takeRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
