package telegram

import (
	"strings"
	"time"
	"unicode/utf8"
)

const streamEditInterval = time.Second

// streamEditor mirrors a growing reply into a placeholder message, editing
// it at most once per interval.
type streamEditor struct {
	edit     func(text string) error
	now      func() time.Time
	interval time.Duration
	last     time.Time
	shown    string
}

func newStreamEditor(edit func(string) error, now func() time.Time) *streamEditor {
	return &streamEditor{
		edit:     edit,
		now:      now,
		interval: streamEditInterval,
		last:     now(),
	}
}

// Update is a chat.Hooks.OnFragment callback.
func (e *streamEditor) Update(buffer string) {
	now := e.now()
	if now.Sub(e.last) < e.interval {
		return
	}

	text := previewTail(buffer, maxTelegramMsgLen)
	if strings.TrimSpace(text) == "" || text == e.shown {
		return
	}

	e.last = now
	if err := e.edit(text); err != nil {
		return
	}
	e.shown = text
}

// previewTail keeps the end of s within max bytes.
func previewTail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	const ellipsis = "…"
	cut := len(s) - max + len(ellipsis)
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	return ellipsis + s[cut:]
}
