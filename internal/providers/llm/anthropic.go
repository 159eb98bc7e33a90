package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
)

const (
	anthropicVersion     = "2023-06-01"
	anthropicMaxTokens   = 4096
	anthropicDefaultBase = "https://api.anthropic.com"
)

type Anthropic struct {
	baseProvider
}

func NewAnthropic(apiKey, model string) *Anthropic {
	return newAnthropicWithBaseURL(anthropicDefaultBase, apiKey, model)
}

func newAnthropicWithBaseURL(baseURL, apiKey, model string) *Anthropic {
	return &Anthropic{
		baseProvider: newBaseProvider(baseURL, apiKey, model),
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type anthropicBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

func (a *Anthropic) headers() map[string]string {
	return map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}
}

func (a *Anthropic) payload(req core.GenerateRequest, stream bool) (map[string]any, error) {
	var system []string
	var messages []anthropicMessage
	for _, m := range req.Messages {
		if m.Role == core.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		content, err := anthropicContent(m)
		if err != nil {
			return nil, err
		}
		messages = append(messages, anthropicMessage{Role: m.Role, Content: content})
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}

	payload := map[string]any{
		"model":       a.model,
		"max_tokens":  maxTokens,
		"messages":    messages,
		"temperature": req.Temperature,
	}
	if len(system) > 0 {
		payload["system"] = strings.Join(system, "\n\n")
	}
	if stream {
		payload["stream"] = true
	}
	return payload, nil
}

func anthropicContent(m core.Message) (any, error) {
	if m.Attachment == nil {
		return m.Content, nil
	}

	var blockType string
	switch {
	case strings.HasPrefix(m.Attachment.MediaType, "image/"):
		blockType = "image"
	case m.Attachment.MediaType == "application/pdf":
		blockType = "document"
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAttachment, m.Attachment.MediaType)
	}

	return []anthropicBlock{
		{
			Type: blockType,
			Source: &anthropicSource{
				Type:      "base64",
				MediaType: m.Attachment.MediaType,
				Data:      base64.StdEncoding.EncodeToString(m.Attachment.Data),
			},
		},
		{Type: "text", Text: m.Content},
	}, nil
}

func (a *Anthropic) Generate(ctx context.Context, req core.GenerateRequest) (core.GenerateResponse, error) {
	payload, err := a.payload(req, false)
	if err != nil {
		return core.GenerateResponse{}, err
	}

	resp, err := a.doRequest(ctx, http.MethodPost, "/v1/messages", payload, a.headers())
	if err != nil {
		return core.GenerateResponse{}, err
	}

	data, err := readBody(resp)
	if err != nil {
		return core.GenerateResponse{}, err
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.GenerateResponse{}, fmt.Errorf("decode: %w", err)
	}

	var text strings.Builder
	for _, c := range result.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	return core.GenerateResponse{Text: text.String()}, nil
}

func (a *Anthropic) Stream(ctx context.Context, req core.GenerateRequest) (core.FragmentStream, error) {
	payload, err := a.payload(req, true)
	if err != nil {
		return nil, err
	}

	resp, err := a.doStreamRequest(ctx, "/v1/messages", payload, a.headers())
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return newSSEStream(resp, decodeAnthropicEvent, nil), nil
}

func decodeAnthropicEvent(data string) (string, bool, error) {
	var event struct {
		Type  string `json:"type"`
		Delta struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"delta"`
		Error *struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return "", false, fmt.Errorf("decode event: %w", err)
	}

	switch event.Type {
	case "content_block_delta":
		if event.Delta.Type == "text_delta" {
			return event.Delta.Text, false, nil
		}
	case "message_stop":
		return "", true, nil
	case "error":
		if event.Error != nil {
			return "", false, fmt.Errorf("stream error: %s: %s", event.Error.Type, event.Error.Message)
		}
		return "", false, fmt.Errorf("stream error")
	}
	return "", false, nil
}

func (a *Anthropic) Models(ctx context.Context) ([]core.Model, error) {
	var models []core.Model
	afterID := ""

	for {
		path := "/v1/models?limit=1000"
		if afterID != "" {
			path = fmt.Sprintf("%s&after_id=%s", path, url.QueryEscape(afterID))
		}

		resp, err := a.doRequest(ctx, http.MethodGet, path, nil, a.headers())
		if err != nil {
			return nil, err
		}

		data, err := readBody(resp)
		if err != nil {
			return nil, err
		}

		var result struct {
			Data []struct {
				ID          string `json:"id"`
				DisplayName string `json:"display_name"`
				Type        string `json:"type"`
			} `json:"data"`
			HasMore bool   `json:"has_more"`
			LastID  string `json:"last_id"`
		}

		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}

		for _, m := range result.Data {
			if m.Type == "model" {
				models = append(models, core.Model{
					ID:   m.ID,
					Name: m.DisplayName,
				})
			}
		}

		if !result.HasMore {
			break
		}
		afterID = result.LastID
	}

	return models, nil
}
