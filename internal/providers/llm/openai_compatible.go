package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
)

type OpenAICompatible struct {
	baseProvider
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string
	// chat completions path relative to BaseURL
	chatPath string
}

type OpenAICompatibleConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	AuthHeader   string // e.g., "Authorization"
	AuthPrefix   string // e.g., "Bearer "
	ExtraHeaders map[string]string
	ChatPath     string // defaults to /v1/chat/completions
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	chatPath := cfg.ChatPath
	if chatPath == "" {
		chatPath = "/v1/chat/completions"
	}
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model),
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
		extraHeaders: cfg.ExtraHeaders,
		chatPath:     chatPath,
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openAIPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

func (o *OpenAICompatible) Generate(ctx context.Context, req core.GenerateRequest) (core.GenerateResponse, error) {
	payload, err := o.payload(req, false)
	if err != nil {
		return core.GenerateResponse{}, err
	}

	resp, err := o.doRequest(ctx, http.MethodPost, o.chatPath, payload, o.headers())
	if err != nil {
		return core.GenerateResponse{}, err
	}

	data, err := readBody(resp)
	if err != nil {
		return core.GenerateResponse{}, err
	}
	return parseOpenAIResponse(data)
}

func (o *OpenAICompatible) Stream(ctx context.Context, req core.GenerateRequest) (core.FragmentStream, error) {
	payload, err := o.payload(req, true)
	if err != nil {
		return nil, err
	}

	resp, err := o.doStreamRequest(ctx, o.chatPath, payload, o.headers())
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return newSSEStream(resp, decodeOpenAIChunk, nil), nil
}

func (o *OpenAICompatible) payload(req core.GenerateRequest, stream bool) (map[string]any, error) {
	messages, err := encodeOpenAIMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"model":       o.model,
		"messages":    messages,
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		payload["max_tokens"] = req.MaxTokens
	}
	if stream {
		payload["stream"] = true
	}
	return payload, nil
}

func (o *OpenAICompatible) headers() map[string]string {
	headers := make(map[string]string)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}
	return headers
}

func encodeOpenAIMessages(history []core.Message) ([]openAIMessage, error) {
	messages := make([]openAIMessage, 0, len(history))
	for _, m := range history {
		if m.Attachment == nil {
			messages = append(messages, openAIMessage{Role: m.Role, Content: m.Content})
			continue
		}

		attachmentPart, err := openAIAttachmentPart(m.Attachment)
		if err != nil {
			return nil, err
		}
		messages = append(messages, openAIMessage{
			Role: m.Role,
			Content: []openAIPart{
				{Type: "text", Text: m.Content},
				attachmentPart,
			},
		})
	}
	return messages, nil
}

func openAIAttachmentPart(a *core.Attachment) (openAIPart, error) {
	switch {
	case strings.HasPrefix(a.MediaType, "image/"):
		uri := fmt.Sprintf("data:%s;base64,%s", a.MediaType, base64.StdEncoding.EncodeToString(a.Data))
		return openAIPart{Type: "image_url", ImageURL: &openAIImageURL{URL: uri}}, nil
	case strings.HasPrefix(a.MediaType, "text/"):
		return openAIPart{Type: "text", Text: fmt.Sprintf("Attached file %s:\n%s", a.Name, string(a.Data))}, nil
	}
	return openAIPart{}, fmt.Errorf("%w: %s", ErrUnsupportedAttachment, a.MediaType)
}

func parseOpenAIResponse(data []byte) (core.GenerateResponse, error) {
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.GenerateResponse{}, fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return core.GenerateResponse{}, fmt.Errorf("%w: %s", ErrEmptyResponse, string(data))
	}
	return core.GenerateResponse{Text: result.Choices[0].Message.Content}, nil
}

func decodeOpenAIChunk(data string) (string, bool, error) {
	if data == "[DONE]" {
		return "", true, nil
	}

	var chunk struct {
		Choices []struct {
			Delta struct {
				Content string `json:"content"`
			} `json:"delta"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return "", false, fmt.Errorf("decode chunk: %w", err)
	}
	if chunk.Error != nil {
		return "", false, fmt.Errorf("stream error: %s", chunk.Error.Message)
	}
	if len(chunk.Choices) == 0 {
		return "", false, nil
	}
	return chunk.Choices[0].Delta.Content, false, nil
}

// Models lists the models of an OpenAI style /models endpoint.
func (o *OpenAICompatible) Models(ctx context.Context) ([]core.Model, error) {
	path := strings.TrimSuffix(o.chatPath, "/chat/completions") + "/models"

	resp, err := o.doRequest(ctx, http.MethodGet, path, nil, o.headers())
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}

	data, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	var apiResp struct {
		Data []struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			ContextLength int    `json:"context_length"`
			ContextWindow int    `json:"context_window"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return nil, fmt.Errorf("decode models response: %w", err)
	}

	models := make([]core.Model, 0, len(apiResp.Data))
	for _, m := range apiResp.Data {
		name := m.Name
		if name == "" {
			name = m.ID
		}
		ctxLen := m.ContextLength
		if ctxLen == 0 {
			ctxLen = m.ContextWindow
		}
		models = append(models, core.Model{ID: m.ID, Name: name, ContextLength: ctxLen})
	}
	return models, nil
}
