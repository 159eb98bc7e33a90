package chat

import (
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/sandevgo/tuskchat/internal/core"
)

// TokenCounter counts and truncates text in model tokens.
type TokenCounter interface {
	Count(text string) int
	Truncate(text string, limit int) string
}

type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads a BPE encoding such as cl100k_base. The first load may
// download the vocabulary.
func NewTiktoken(encoding string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

func (t *Tiktoken) Truncate(text string, limit int) string {
	tokens := t.enc.Encode(text, nil, nil)
	if limit <= 0 || len(tokens) <= limit {
		return text
	}
	return trimPartialRune(t.enc.Decode(tokens[:limit]))
}

// trimPartialRune drops the bytes of a multi-byte rune cut off at the end of s.
// BPE tokens may split a rune, so a token prefix can decode to invalid UTF-8.
func trimPartialRune(s string) string {
	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r != utf8.RuneError || size != 1 {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}

// countMessages follows the chat format accounting of 4 tokens per message
// plus 3 for the reply primer.
func countMessages(tc TokenCounter, messages []core.Message) int {
	total := 3
	for _, m := range messages {
		total += 4 + tc.Count(m.Role) + tc.Count(m.Content)
	}
	return total
}
