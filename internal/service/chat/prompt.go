package chat

import (
	"fmt"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
)

const DefaultSystemPrompt = `You are a deep-thinking AI assistant. You must have the following traits:
1. Before every answer, analyze whether the user's question needs information from the web.
2. Your answers must be based on facts.
3. No matter how long the conversation runs, strictly follow the first instruction the user gave.`

const (
	augmentTemplate = "User question: %s\n\nReferenced live web information:\n%s\n\nPlease answer in depth using the above information and conversation history:"
	noResultsText   = "no search results."
	searchErrorText = "search error: %s"
)

// FormatResults renders a result set as one line per result.
func FormatResults(results []core.SearchResult) string {
	if len(results) == 0 {
		return noResultsText
	}

	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("- %s: %s (source: %s)", r.Title, r.Snippet, r.Source))
	}
	return strings.Join(lines, "\n")
}

func formatSearchError(err error) string {
	return fmt.Sprintf(searchErrorText, err)
}

// Augment wraps the user question with retrieved context.
func Augment(userText, retrievalText string) string {
	return fmt.Sprintf(augmentTemplate, userText, retrievalText)
}

// buildPayload copies history and rewrites its last user message for this
// turn only. Stored history is never touched.
func buildPayload(history []core.Message, augmented string, attachment *core.Attachment) []core.Message {
	payload := make([]core.Message, len(history))
	copy(payload, history)

	for i := len(payload) - 1; i >= 0; i-- {
		if payload[i].Role != core.RoleUser {
			continue
		}
		if augmented != "" {
			payload[i].Content = augmented
		}
		payload[i].Attachment = attachment
		break
	}
	return payload
}
