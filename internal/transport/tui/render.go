package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/ui"
)

type entryKind int

const (
	entryUser entryKind = iota
	entryAssistant
	entryStatus
	entryError
)

type entry struct {
	kind entryKind
	text string
	// detail is shown instead of text when details are expanded
	detail string
}

func entriesFromHistory(messages []core.Message) []entry {
	out := make([]entry, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case core.RoleUser:
			out = append(out, entry{kind: entryUser, text: m.Content})
		case core.RoleAssistant:
			out = append(out, entry{kind: entryAssistant, text: m.Content})
		}
	}
	return out
}

func renderTranscript(entries []entry, streaming string, expand bool, width int) string {
	wrap := lipgloss.NewStyle().Width(max(width, 10))

	blocks := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		switch e.kind {
		case entryUser:
			blocks = append(blocks, ui.UserStyle.Render("You")+"\n"+wrap.Render(e.text))
		case entryAssistant:
			blocks = append(blocks, ui.AssistantStyle.Render("Assistant")+"\n"+wrap.Render(e.text))
		case entryStatus:
			text := e.text
			if expand && e.detail != "" {
				text = e.detail
			}
			blocks = append(blocks, ui.StatusStyle.Render(wrap.Render(text)))
		case entryError:
			blocks = append(blocks, ui.ErrorStyle.Render("Error: ")+wrap.Render(e.text))
		}
	}
	if streaming != "" {
		blocks = append(blocks, ui.AssistantStyle.Render("Assistant")+"\n"+wrap.Render(streaming+"▍"))
	}
	return strings.Join(blocks, "\n\n")
}

// summarizeRetrieval collapses the search context to its first line.
func summarizeRetrieval(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	first := truncateRunes(lines[0], 80)
	if len(lines) == 1 {
		return "🔎 " + first
	}
	return fmt.Sprintf("🔎 %s (+%d more, ctrl+o to expand)", first, len(lines)-1)
}

func formatSources(citations []core.Citation) string {
	var sb strings.Builder
	sb.WriteString("Sources:")
	for i, c := range citations {
		title := c.Title
		if title == "" {
			title = c.URI
		}
		fmt.Fprintf(&sb, "\n%d. %s %s", i+1, title, c.URI)
	}
	return sb.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
