package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultGeminiEndpoint is the Generative Language API root.
const DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// ProviderError is returned when the provider answers with a non-200 status.
type ProviderError struct {
	Provider string
	Code     int
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Provider, e.Code, e.Message)
}

// GeminiAPIClient is a direct HTTP client for the Google Gemini API with
// function calling.
type GeminiAPIClient struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewGeminiAPIClient creates a new Gemini API client. An empty endpoint uses
// DefaultGeminiEndpoint.
func NewGeminiAPIClient(apiKey, model, endpoint string) *GeminiAPIClient {
	if endpoint == "" {
		endpoint = DefaultGeminiEndpoint
	}
	return &GeminiAPIClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns the provider name.
func (g *GeminiAPIClient) Name() string {
	return "gemini"
}

// Complete sends a generateContent request.
func (g *GeminiAPIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	body, err := g.buildRequestBody(req)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.endpoint, url.PathEscape(g.model), url.QueryEscape(g.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: g.Name(), Code: resp.StatusCode, Message: string(respBody)}
	}

	var result geminiAPIResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return g.responseToCompletion(&result, time.Since(start)), nil
}

// defaultSafetySettings is sent with every request. The dangerous-content
// filter is off.
var defaultSafetySettings = []geminiSafetySetting{
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
}

func (g *GeminiAPIClient) buildRequestBody(req CompletionRequest) (*geminiRequest, error) {
	body := &geminiRequest{SafetySettings: defaultSafetySettings}

	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	for _, msg := range req.Messages {
		content, err := toGeminiContent(msg)
		if err != nil {
			return nil, err
		}
		body.Contents = append(body.Contents, content)
	}

	if len(req.Tools) > 0 {
		decls := make([]geminiFunctionDecl, len(req.Tools))
		for i, t := range req.Tools {
			decls[i] = geminiFunctionDecl{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  geminiSchema(t.InputSchema),
			}
		}
		body.Tools = []geminiTool{{FunctionDeclarations: decls}}
	}

	if req.MaxTokens > 0 || req.Temperature != nil {
		body.GenerationConfig = &geminiGenerationConfig{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
		}
	}

	return body, nil
}

func toGeminiContent(msg Message) (geminiContent, error) {
	switch msg.Role {
	case RoleUser:
		return geminiContent{Role: "user", Parts: []geminiPart{{Text: msg.Content}}}, nil

	case RoleAssistant:
		c := geminiContent{Role: "model"}
		if msg.Content != "" {
			c.Parts = append(c.Parts, geminiPart{Text: msg.Content})
		}
		for _, call := range msg.ToolCalls {
			args := map[string]any{}
			if call.Input != "" {
				if err := json.Unmarshal([]byte(call.Input), &args); err != nil {
					return geminiContent{}, fmt.Errorf("tool call %s: invalid input: %w", call.Name, err)
				}
			}
			c.Parts = append(c.Parts, geminiPart{FunctionCall: &geminiFunctionCall{Name: call.Name, Args: args}})
		}
		return c, nil

	case RoleTool:
		c := geminiContent{Role: "user"}
		for _, res := range msg.ToolResults {
			key := "content"
			if res.IsError {
				key = "error"
			}
			c.Parts = append(c.Parts, geminiPart{FunctionResponse: &geminiFunctionResponse{
				Name:     res.Name,
				Response: map[string]any{key: toolPayload(res.Content)},
			}})
		}
		return c, nil

	default:
		return geminiContent{}, fmt.Errorf("unsupported message role %q", msg.Role)
	}
}

// toolPayload passes JSON tool output through structurally so the model
// sees objects rather than an escaped string.
func toolPayload(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

// geminiSchemaKeys are the JSON Schema keywords function declarations accept.
var geminiSchemaKeys = map[string]bool{
	"type": true, "description": true, "enum": true, "format": true,
	"properties": true, "required": true, "items": true,
	"minimum": true, "maximum": true, "nullable": true,
}

// geminiSchema strips keywords the Gemini API rejects, recursively.
func geminiSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		if !geminiSchemaKeys[k] {
			continue
		}
		switch k {
		case "properties":
			props, ok := v.(map[string]any)
			if !ok {
				continue
			}
			cleaned := make(map[string]any, len(props))
			for name, p := range props {
				if pm, ok := p.(map[string]any); ok {
					cleaned[name] = geminiSchema(pm)
				}
			}
			out[k] = cleaned
		case "items":
			if im, ok := v.(map[string]any); ok {
				out[k] = geminiSchema(im)
			}
		default:
			out[k] = v
		}
	}
	// An object with no properties must be omitted entirely.
	if props, ok := out["properties"].(map[string]any); ok && len(props) == 0 && out["type"] == "object" {
		return nil
	}
	return out
}

func (g *GeminiAPIClient) responseToCompletion(resp *geminiAPIResponse, duration time.Duration) *CompletionResponse {
	var content strings.Builder
	var toolCalls []ToolCall
	var stopReason string

	if len(resp.Candidates) > 0 {
		candidate := resp.Candidates[0]
		stopReason = candidate.FinishReason
		for i, part := range candidate.Content.Parts {
			if part.Text != "" {
				content.WriteString(part.Text)
			}
			if part.FunctionCall != nil {
				input, _ := json.Marshal(part.FunctionCall.Args)
				toolCalls = append(toolCalls, ToolCall{
					ID:    fmt.Sprintf("call_%d", i),
					Name:  part.FunctionCall.Name,
					Input: string(input),
				})
			}
		}
	}

	return &CompletionResponse{
		Content:    content.String(),
		StopReason: stopReason,
		ToolCalls:  toolCalls,
		Model:      g.model,
		Duration:   duration,
		Usage: Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		},
	}
}

// Request structures

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	SafetySettings    []geminiSafetySetting   `json:"safetySettings,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDecl `json:"functionDeclarations"`
}

type geminiFunctionDecl struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	FunctionCall     *geminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
}

type geminiFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type geminiFunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// Response structures

type geminiAPIResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}
