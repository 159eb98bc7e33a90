package telegram

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestStreamEditor_Throttles(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	var edits []string
	e := newStreamEditor(func(text string) error {
		edits = append(edits, text)
		return nil
	}, clock.now)

	e.Update("He")
	assert.Empty(t, edits, "no edit right after the placeholder")

	clock.advance(1100 * time.Millisecond)
	e.Update("Hello")
	e.Update("Hello, wo")
	assert.Equal(t, []string{"Hello"}, edits)

	clock.advance(time.Second)
	e.Update("Hello, world")
	assert.Equal(t, []string{"Hello", "Hello, world"}, edits)
}

func TestStreamEditor_SkipsUnchangedAndBlank(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	calls := 0
	e := newStreamEditor(func(string) error { calls++; return nil }, clock.now)

	clock.advance(2 * time.Second)
	e.Update("   ")
	assert.Equal(t, 0, calls)

	e.Update("same")
	clock.advance(2 * time.Second)
	e.Update("same")
	assert.Equal(t, 1, calls)
}

func TestStreamEditor_RetriesAfterFailure(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	fail := true
	var shown []string
	e := newStreamEditor(func(text string) error {
		if fail {
			return errors.New("flood wait")
		}
		shown = append(shown, text)
		return nil
	}, clock.now)

	clock.advance(2 * time.Second)
	e.Update("abc")
	fail = false
	clock.advance(2 * time.Second)
	e.Update("abc")
	assert.Equal(t, []string{"abc"}, shown)
}

func TestPreviewTail(t *testing.T) {
	assert.Equal(t, "short", previewTail("short", 10))

	long := strings.Repeat("ж", 20)
	got := previewTail(long, 11)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 11)
	assert.True(t, strings.HasPrefix(got, "…"))
}
