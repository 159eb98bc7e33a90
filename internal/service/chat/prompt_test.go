package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandevgo/tuskchat/internal/core"
)

func TestFormatResults(t *testing.T) {
	tests := []struct {
		name    string
		results []core.SearchResult
		want    string
	}{
		{
			name: "empty",
			want: "no search results.",
		},
		{
			name: "several",
			results: []core.SearchResult{
				{Title: "Taipei Weather", Snippet: "28°C sunny", Source: "https://x"},
				{Title: "Forecast", Snippet: "rain later", Source: "https://y"},
			},
			want: "- Taipei Weather: 28°C sunny (source: https://x)\n- Forecast: rain later (source: https://y)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatResults(tt.results))
		})
	}
}

func TestBuildPayload(t *testing.T) {
	history := []core.Message{
		{Role: core.RoleSystem, Content: "sys"},
		{Role: core.RoleUser, Content: "q"},
	}
	att := &core.Attachment{Name: "a.png", MediaType: "image/png"}

	payload := buildPayload(history, "augmented", att)
	assert.Equal(t, "augmented", payload[1].Content)
	assert.Same(t, att, payload[1].Attachment)
	assert.Equal(t, "q", history[1].Content)
	assert.Nil(t, history[1].Attachment)

	plain := buildPayload(history, "", nil)
	assert.Equal(t, history, plain)
}
