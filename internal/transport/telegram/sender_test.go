package telegram

import (
	"context"
	"strings"
	"testing"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/tuskchat/internal/core"
)

type sentMessage struct {
	edit bool
	text string
	opts []interface{}
}

type fakeMessenger struct {
	sent    []sentMessage
	editErr error
}

func (f *fakeMessenger) Send(_ tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.sent = append(f.sent, sentMessage{text: what.(string), opts: opts})
	return &tele.Message{ID: len(f.sent)}, nil
}

func (f *fakeMessenger) Edit(_ tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.editErr != nil {
		return nil, f.editErr
	}
	f.sent = append(f.sent, sentMessage{edit: true, text: what.(string), opts: opts})
	return &tele.Message{}, nil
}

func TestSender_MarkdownReplacesPlaceholder(t *testing.T) {
	api := &fakeMessenger{}
	s := newSender(api)
	chat := &tele.Chat{ID: 7}

	err := s.sendMarkdown(context.Background(), chat, "**hi**", &tele.Message{ID: 1, Chat: chat})
	require.NoError(t, err)

	require.Len(t, api.sent, 1)
	assert.True(t, api.sent[0].edit)
	assert.Equal(t, "<strong>hi</strong>", api.sent[0].text)
	assert.Contains(t, api.sent[0].opts, tele.ModeHTML)
}

func TestSender_LongReplyIsChunked(t *testing.T) {
	api := &fakeMessenger{}
	s := newSender(api)

	para := strings.Repeat("word ", 300)
	md := strings.Repeat(para+"\n\n", 6)
	require.NoError(t, s.sendMarkdown(context.Background(), &tele.Chat{ID: 7}, md, nil))

	require.Greater(t, len(api.sent), 1)
	for _, m := range api.sent {
		assert.False(t, m.edit)
		assert.LessOrEqual(t, len(m.text), maxTelegramMsgLen)
	}
}

func TestSender_MultiByteChunksFitUTF16Limit(t *testing.T) {
	api := &fakeMessenger{}
	s := newSender(api)

	para := strings.Repeat("привет мир ", 100)
	md := strings.Repeat(para+"\n\n", 4)
	require.NoError(t, s.sendMarkdown(context.Background(), &tele.Chat{ID: 7}, md, nil))

	require.Greater(t, len(api.sent), 1)
	for _, m := range api.sent {
		assert.True(t, utf8.ValidString(m.text))
		assert.LessOrEqual(t, len(m.text), maxTelegramMsgLen)
		assert.LessOrEqual(t, len(utf16.Encode([]rune(m.text))), 4096)
	}
}

func TestSender_IgnoresNotModified(t *testing.T) {
	api := &fakeMessenger{editErr: tele.ErrMessageNotModified}
	s := newSender(api)

	err := s.sendText(context.Background(), &tele.Chat{ID: 7}, "same", &tele.Message{ID: 1})
	assert.NoError(t, err)
}

func TestSender_Citations(t *testing.T) {
	api := &fakeMessenger{}
	s := newSender(api)
	ctx := context.Background()

	require.NoError(t, s.sendCitations(ctx, &tele.Chat{ID: 7}, nil))
	assert.Empty(t, api.sent)

	require.NoError(t, s.sendCitations(ctx, &tele.Chat{ID: 7}, []core.Citation{{Title: "A", URI: "https://a"}}))
	require.Len(t, api.sent, 1)
	assert.Contains(t, api.sent[0].opts, tele.NoPreview)
}

func TestFormatCitations(t *testing.T) {
	got := formatCitations([]core.Citation{
		{Title: "Taipei <Weather>", URI: "https://x?a=1&b=2"},
		{Title: "dup", URI: "https://x?a=1&b=2"},
		{URI: "https://y"},
		{Title: "no uri"},
	})

	want := "<b>Sources</b>\n" +
		"1. <a href=\"https://x?a=1&amp;b=2\">Taipei &lt;Weather&gt;</a>\n" +
		"2. <a href=\"https://y\">https://y</a>"
	assert.Equal(t, want, got)
	assert.Empty(t, formatCitations(nil))
}

func TestSender_Retrieval(t *testing.T) {
	api := &fakeMessenger{}
	s := newSender(api)

	require.NoError(t, s.sendRetrieval(context.Background(), &tele.Chat{ID: 7}, "- A: <b> (source: x)"))
	require.Len(t, api.sent, 1)
	assert.Contains(t, api.sent[0].text, "<pre>- A: &lt;b&gt; (source: x)</pre>")
}
