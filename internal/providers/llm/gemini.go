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

const geminiDefaultBase = "https://generativelanguage.googleapis.com"

// Gemini talks to the Google generative language API. With grounding
// enabled the google_search tool is attached and its sources are returned
// as citations.
type Gemini struct {
	baseProvider
	grounding bool
}

func NewGemini(apiKey, model string, grounding bool) *Gemini {
	return newGeminiWithBaseURL(geminiDefaultBase, apiKey, model, grounding)
}

func newGeminiWithBaseURL(baseURL, apiKey, model string, grounding bool) *Gemini {
	return &Gemini{
		baseProvider: newBaseProvider(baseURL, apiKey, model),
		grounding:    grounding,
	}
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"system_instruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
	Tools             []map[string]any       `json:"tools,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason      string `json:"finishReason"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (r geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// finished reports whether the candidate carries a finishReason, which only
// the last chunk of a stream does.
func (r geminiResponse) finished() bool {
	return len(r.Candidates) > 0 && r.Candidates[0].FinishReason != ""
}

func (r geminiResponse) citations() []core.Citation {
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []core.Citation
	for _, chunk := range r.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		out = append(out, core.Citation{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return out
}

func (r geminiResponse) blocked() error {
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return fmt.Errorf("prompt blocked: %s", r.PromptFeedback.BlockReason)
	}
	return nil
}

func (g *Gemini) buildRequest(req core.GenerateRequest) geminiRequest {
	contents := make([]geminiContent, 0, len(req.Messages))
	var systemInstruction *geminiContent
	for _, m := range req.Messages {
		if m.Role == core.RoleSystem {
			if systemInstruction == nil {
				systemInstruction = &geminiContent{}
			}
			systemInstruction.Parts = append(systemInstruction.Parts, geminiPart{Text: m.Content})
			continue
		}

		role := "user"
		if m.Role == core.RoleAssistant {
			role = "model"
		}

		parts := []geminiPart{{Text: m.Content}}
		if m.Attachment != nil {
			parts = append(parts, geminiPart{InlineData: &geminiInlineData{
				MimeType: m.Attachment.MediaType,
				Data:     base64.StdEncoding.EncodeToString(m.Attachment.Data),
			}})
		}
		contents = append(contents, geminiContent{Role: role, Parts: parts})
	}

	out := geminiRequest{
		Contents:          contents,
		SystemInstruction: systemInstruction,
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if g.grounding {
		out.Tools = []map[string]any{{"google_search": map[string]any{}}}
	}
	return out
}

func (g *Gemini) headers() map[string]string {
	return map[string]string{"x-goog-api-key": g.apiKey}
}

func (g *Gemini) modelPath(method string) string {
	return fmt.Sprintf("/v1beta/models/%s:%s", url.PathEscape(g.model), method)
}

func (g *Gemini) Generate(ctx context.Context, req core.GenerateRequest) (core.GenerateResponse, error) {
	resp, err := g.doRequest(ctx, http.MethodPost, g.modelPath("generateContent"), g.buildRequest(req), g.headers())
	if err != nil {
		return core.GenerateResponse{}, err
	}

	data, err := readBody(resp)
	if err != nil {
		return core.GenerateResponse{}, err
	}

	var result geminiResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return core.GenerateResponse{}, fmt.Errorf("decode: %w", err)
	}
	if err := result.blocked(); err != nil {
		return core.GenerateResponse{}, err
	}
	if len(result.Candidates) == 0 {
		return core.GenerateResponse{}, ErrEmptyResponse
	}
	return core.GenerateResponse{Text: result.text(), Citations: result.citations()}, nil
}

func (g *Gemini) Stream(ctx context.Context, req core.GenerateRequest) (core.FragmentStream, error) {
	resp, err := g.doStreamRequest(ctx, g.modelPath("streamGenerateContent")+"?alt=sse", g.buildRequest(req), g.headers())
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var citations []core.Citation
	decode := func(data string) (string, bool, error) {
		var chunk geminiResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return "", false, fmt.Errorf("decode chunk: %w", err)
		}
		if err := chunk.blocked(); err != nil {
			return "", false, err
		}
		// grounding metadata arrives with the last chunks
		if c := chunk.citations(); len(c) > 0 {
			citations = c
		}
		return chunk.text(), chunk.finished(), nil
	}

	return newSSEStream(resp, decode, func() []core.Citation { return citations }), nil
}

func (g *Gemini) Models(ctx context.Context) ([]core.Model, error) {
	resp, err := g.doRequest(ctx, http.MethodGet, "/v1beta/models?pageSize=1000", nil, g.headers())
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}

	data, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	var result struct {
		Models []struct {
			Name                       string   `json:"name"`
			DisplayName                string   `json:"displayName"`
			InputTokenLimit            int      `json:"inputTokenLimit"`
			SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
		} `json:"models"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode models response: %w", err)
	}

	models := make([]core.Model, 0, len(result.Models))
	for _, m := range result.Models {
		if !supports(m.SupportedGenerationMethods, "generateContent") {
			continue
		}
		models = append(models, core.Model{
			ID:            strings.TrimPrefix(m.Name, "models/"),
			Name:          m.DisplayName,
			ContextLength: m.InputTokenLimit,
		})
	}
	return models, nil
}

func supports(methods []string, method string) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}
