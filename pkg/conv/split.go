package conv

import "strings"

// SplitHTML cuts text into chunks of at most maxLen bytes, preferring
// newline boundaries so tags opened on a line are closed in the same chunk.
func SplitHTML(text string, maxLen int) []string {
	if maxLen <= 0 || len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cut := maxLen
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/3 {
			cut = idx
		} else {
			cut = runeBoundary(text, cut)
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	return chunks
}

// runeBoundary moves cut back until it does not split a UTF-8 sequence.
func runeBoundary(text string, cut int) int {
	i := cut
	for i > 0 && text[i]&0xC0 == 0x80 {
		i--
	}
	if i == 0 {
		return cut
	}
	return i
}
