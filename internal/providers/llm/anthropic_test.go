package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/tuskchat/internal/core"
)

func TestAnthropic_Generate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"Hi!"}]}`)
	}))
	defer srv.Close()

	a := newAnthropicWithBaseURL(srv.URL, "key", "claude-3-5-haiku-latest")
	resp, err := a.Generate(context.Background(), core.GenerateRequest{
		Messages: []core.Message{
			{Role: core.RoleSystem, Content: "be kind"},
			{Role: core.RoleUser, Content: "hello", Attachment: &core.Attachment{
				Name: "cat.jpg", MediaType: "image/jpeg", Data: []byte("abc"),
			}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi!", resp.Text)

	assert.Equal(t, "be kind", got["system"])
	assert.Equal(t, float64(anthropicMaxTokens), got["max_tokens"])

	messages := got["messages"].([]any)
	require.Len(t, messages, 1)
	content := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "image", content[0].(map[string]any)["type"])
	assert.Equal(t, "hello", content[1].(map[string]any)["text"])
}

func TestAnthropic_RejectsUnsupportedAttachment(t *testing.T) {
	a := NewAnthropic("key", "claude")
	_, err := a.Generate(context.Background(), core.GenerateRequest{
		Messages: []core.Message{{Role: core.RoleUser, Content: "x", Attachment: &core.Attachment{
			Name: "a.zip", MediaType: "application/zip",
		}}},
	})
	assert.ErrorIs(t, err, ErrUnsupportedAttachment)
}

func TestAnthropic_Stream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "event: message_start\ndata: {\"type\":\"message_start\"}\n\n")
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"Good \"}}\n\n")
		fmt.Fprint(w, "event: ping\ndata: {\"type\":\"ping\"}\n\n")
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"day\"}}\n\n")
		fmt.Fprint(w, "event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"ignored\"}}\n\n")
	}))
	defer srv.Close()

	a := newAnthropicWithBaseURL(srv.URL, "key", "claude")
	stream, err := a.Stream(context.Background(), core.GenerateRequest{
		Messages: []core.Message{{Role: core.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	resp, err := Drain(stream)
	require.NoError(t, err)
	assert.Equal(t, "Good day", resp.Text)
}

func TestAnthropic_StreamWithoutMessageStop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "event: message_start\ndata: {\"type\":\"message_start\"}\n\n")
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"Good \"}}\n\n")
	}))
	defer srv.Close()

	a := newAnthropicWithBaseURL(srv.URL, "key", "claude")
	stream, err := a.Stream(context.Background(), core.GenerateRequest{
		Messages: []core.Message{{Role: core.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	_, err = Drain(stream)
	assert.ErrorIs(t, err, ErrStreamTruncated)
}

func TestDecodeAnthropicEvent_Error(t *testing.T) {
	_, _, err := decodeAnthropicEvent(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Overloaded")
}
