package command

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/tuskchat/internal/core"
)

type fakeSessions struct {
	infos  map[string]core.SessionInfo
	resets []string
	err    error
}

func (f *fakeSessions) Reset(_ context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	f.resets = append(f.resets, key)
	return nil
}

func (f *fakeSessions) Describe(key string) (core.SessionInfo, bool) {
	info, ok := f.infos[key]
	return info, ok
}

func TestRouter_Execute(t *testing.T) {
	sessions := &fakeSessions{infos: map[string]core.SessionInfo{
		"chat-1": {ID: "abc", Provider: "groq", Model: "llama-3.3-70b-versatile", Messages: 4, Search: true},
	}}
	r := NewRouter(sessions, nil)
	ctx := context.Background()

	t.Run("plain text is not a command", func(t *testing.T) {
		_, handled := r.Execute(ctx, "chat-1", "hello /model")
		assert.False(t, handled)
	})

	t.Run("unknown command", func(t *testing.T) {
		out, handled := r.Execute(ctx, "chat-1", "/weather today")
		assert.True(t, handled)
		assert.Equal(t, "Unknown command: /weather", out)
	})

	t.Run("model shows session", func(t *testing.T) {
		out, handled := r.Execute(ctx, "chat-1", "/model")
		require.True(t, handled)
		assert.Contains(t, out, "`groq`")
		assert.Contains(t, out, "`llama-3.3-70b-versatile`")
		assert.Contains(t, out, "**Web search**  ›  `on`")
	})

	t.Run("model without session", func(t *testing.T) {
		out, _ := r.Execute(ctx, "other", "/model")
		assert.Contains(t, out, "No active session")
	})

	t.Run("bot suffix is stripped", func(t *testing.T) {
		_, handled := r.Execute(ctx, "chat-1", "/new@tusk_bot")
		assert.True(t, handled)
		assert.Equal(t, []string{"chat-1"}, sessions.resets)
	})

	t.Run("help lists sorted commands", func(t *testing.T) {
		out, _ := r.Execute(ctx, "chat-1", "/help")
		assert.Contains(t, out, "`/help`")
		assert.Less(t, strings.Index(out, "/help"), strings.Index(out, "/model"))
		assert.Less(t, strings.Index(out, "/model"), strings.Index(out, "/new"))
	})
}

func TestRouter_CommandError(t *testing.T) {
	r := NewRouter(&fakeSessions{err: errors.New("locked")}, nil)

	out, handled := r.Execute(context.Background(), "k", "/new")
	assert.True(t, handled)
	assert.Contains(t, out, "/new failed")
	assert.Contains(t, out, "locked")
}

func TestModelCommand_List(t *testing.T) {
	lister := func(ctx context.Context) ([]core.Model, error) {
		models := make([]core.Model, 0, maxListedModels+5)
		for i := 0; i < maxListedModels+5; i++ {
			models = append(models, core.Model{ID: "m" + string(rune('a'+i%26))})
		}
		return models, nil
	}
	r := NewRouter(&fakeSessions{}, lister)

	out, _ := r.Execute(context.Background(), "k", "/model list")
	assert.Contains(t, out, "Available Models")
	assert.Contains(t, out, "5 more not shown")

	out, _ = NewRouter(&fakeSessions{}, nil).Execute(context.Background(), "k", "/model list")
	assert.Contains(t, out, "cannot list models")
}
