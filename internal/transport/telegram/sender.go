package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/conv"
	"github.com/sandevgo/tuskchat/pkg/log"
	tele "gopkg.in/telebot.v3"
)

// maxTelegramMsgLen is counted in bytes. Telegram limits a message to 4096
// UTF-16 code units, and a byte count never undercounts those.
const maxTelegramMsgLen = 4000

// messenger is the part of *tele.Bot used for replies.
type messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type sender struct {
	api messenger
}

func newSender(api messenger) *sender {
	return &sender{api: api}
}

// sendMarkdown converts Markdown to Telegram HTML and sends it in chunks.
// With a placeholder the first chunk replaces its text.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, md string, placeholder *tele.Message) error {
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	if html == "" {
		html = "<i>(empty reply)</i>"
	}
	return s.deliver(ctx, to, conv.SplitHTML(html, maxTelegramMsgLen), placeholder, tele.ModeHTML)
}

// sendText sends plain text, replacing the placeholder when present.
func (s *sender) sendText(ctx context.Context, to tele.Recipient, text string, placeholder *tele.Message) error {
	return s.deliver(ctx, to, conv.SplitHTML(text, maxTelegramMsgLen), placeholder)
}

func (s *sender) sendCitations(ctx context.Context, to tele.Recipient, citations []core.Citation) error {
	text := formatCitations(citations)
	if text == "" {
		return nil
	}
	return s.deliver(ctx, to, []string{text}, nil, tele.ModeHTML, tele.NoPreview)
}

// sendRetrieval shows the search context that was added to the prompt.
func (s *sender) sendRetrieval(ctx context.Context, to tele.Recipient, retrieval string) error {
	body := conv.SplitHTML(conv.EscapeHTML(retrieval), maxTelegramMsgLen-64)[0]
	text := fmt.Sprintf("<b>🔎 Search context</b>\n<pre>%s</pre>", body)
	return s.deliver(ctx, to, []string{text}, nil, tele.ModeHTML, tele.NoPreview)
}

func (s *sender) deliver(ctx context.Context, to tele.Recipient, chunks []string, placeholder *tele.Message, opts ...interface{}) error {
	logger := log.FromCtx(ctx)

	for i, chunk := range chunks {
		var err error
		if i == 0 && placeholder != nil {
			_, err = s.api.Edit(placeholder, chunk, opts...)
			if isNotModified(err) {
				err = nil
			}
		} else {
			_, err = s.api.Send(to, chunk, opts...)
		}
		if err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return err
		}
	}
	return nil
}

func isNotModified(err error) bool {
	return errors.Is(err, tele.ErrMessageNotModified) || errors.Is(err, tele.ErrSameMessageContent)
}

// formatCitations renders grounding sources as a numbered HTML list.
func formatCitations(citations []core.Citation) string {
	seen := make(map[string]bool, len(citations))

	var sb strings.Builder
	n := 0
	for _, c := range citations {
		if c.URI == "" || seen[c.URI] {
			continue
		}
		seen[c.URI] = true
		n++

		title := strings.TrimSpace(c.Title)
		if title == "" {
			title = c.URI
		}
		fmt.Fprintf(&sb, "%d. <a href=\"%s\">%s</a>\n", n, conv.EscapeHTML(c.URI), conv.EscapeHTML(title))
	}
	if n == 0 {
		return ""
	}
	return "<b>Sources</b>\n" + strings.TrimRight(sb.String(), "\n")
}
