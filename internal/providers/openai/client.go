// Package openai calls an OpenAI-compatible chat-completions API to generate
// the Thai review script, the social caption and the video-generation prompt.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ugcstudio/internal/domain/fault"
)

const (
	providerName   = "openai"
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 60 * time.Second
)

// Options controls how the client is configured.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client is a stateless chat-completions client. API keys are supplied per
// call so each request resolves its own credentials.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient constructs a client with sane defaults.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, client: client}
}

// ScriptInput names everything script generation needs. RuleText becomes the
// system instruction; the other fields are rendered into the user request.
type ScriptInput struct {
	APIKey          string
	Model           string
	RuleText        string
	ProductName     string
	ProductDetails  string
	ReviewStyle     string
	ReviewObjective string
}

// ScriptResult is the tagged outcome of script generation. Structured reports
// whether the provider returned the requested JSON object; when it did not,
// the entire completion text becomes Script and Caption stays empty. Parsing
// problems are never an error: the result is always best effort.
type ScriptResult struct {
	Script     string
	Caption    string
	Structured bool
	Raw        string
}

// PromptInput names everything video-prompt generation needs.
type PromptInput struct {
	APIKey         string
	Model          string
	RuleText       string
	ProductName    string
	ProductDetails string
	ReviewStyle    string
	Script         string
}

// Exchange captures the outbound request payload and the provider's raw
// response so callers can surface both for debugging, the way the API's
// generate endpoints echo them.
type Exchange struct {
	Request  any             `json:"apiRequest"`
	Response json.RawMessage `json:"apiResponse"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type scriptPayload struct {
	Script  string `json:"script"`
	Caption string `json:"caption"`
}

// GenerateScript produces the Thai sales script and caption.
func (c *Client) GenerateScript(ctx context.Context, in ScriptInput) (*ScriptResult, *Exchange, error) {
	payload := chatRequest{
		Model:          in.Model,
		ResponseFormat: &chatFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: buildScriptSystem(in.RuleText)},
			{Role: "user", Content: buildScriptUser(in)},
		},
	}
	content, exchange, err := c.complete(ctx, in.APIKey, payload)
	if err != nil {
		return nil, exchange, err
	}
	result := &ScriptResult{Raw: content}
	if parsed, ok := parseScriptPayload(content); ok {
		result.Script = parsed.Script
		result.Caption = parsed.Caption
		result.Structured = true
		return result, exchange, nil
	}
	result.Script = strings.TrimSpace(content)
	return result, exchange, nil
}

// GenerateVideoPrompt derives a video-generation prompt from the script. The
// system instruction mandates the literal Thai script be embedded as spoken
// dialogue; whether the provider complies is not verified locally.
func (c *Client) GenerateVideoPrompt(ctx context.Context, in PromptInput) (string, *Exchange, error) {
	payload := chatRequest{
		Model: in.Model,
		Messages: []chatMessage{
			{Role: "system", Content: buildVideoPromptSystem(in.RuleText)},
			{Role: "user", Content: buildVideoPromptUser(in)},
		},
	}
	content, exchange, err := c.complete(ctx, in.APIKey, payload)
	if err != nil {
		return "", exchange, err
	}
	return strings.TrimSpace(content), exchange, nil
}

func (c *Client) complete(ctx context.Context, apiKey string, payload chatRequest) (string, *Exchange, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", nil, &fault.MissingCredential{Key: "OpenAI"}
	}
	exchange := &Exchange{Request: payload}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", exchange, fmt.Errorf("openai: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/chat/completions", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", exchange, fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", exchange, &fault.Upstream{Provider: providerName, Message: "request failed"}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", exchange, &fault.Upstream{Provider: providerName, Message: "failed to read response"}
	}
	exchange.Response = append(json.RawMessage(nil), body...)

	if resp.StatusCode >= 300 {
		return "", exchange, &fault.Upstream{
			Provider: providerName,
			Message:  upstreamMessage(body, resp.StatusCode),
			Status:   resp.StatusCode,
		}
	}
	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", exchange, &fault.Upstream{Provider: providerName, Message: "malformed response", Status: resp.StatusCode}
	}
	if len(out.Choices) == 0 {
		return "", exchange, &fault.Upstream{Provider: providerName, Message: "empty completion", Status: resp.StatusCode}
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", exchange, &fault.Upstream{Provider: providerName, Message: "empty completion", Status: resp.StatusCode}
	}
	return content, exchange, nil
}

func upstreamMessage(body []byte, status int) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && strings.TrimSpace(e.Error.Message) != "" {
		return strings.TrimSpace(e.Error.Message)
	}
	return fmt.Sprintf("status %d", status)
}

func parseScriptPayload(raw string) (scriptPayload, bool) {
	fragment := extractJSONFragment(raw)
	if fragment == "" {
		return scriptPayload{}, false
	}
	var parsed scriptPayload
	if err := json.Unmarshal([]byte(fragment), &parsed); err != nil {
		return scriptPayload{}, false
	}
	parsed.Script = strings.TrimSpace(parsed.Script)
	parsed.Caption = strings.TrimSpace(parsed.Caption)
	if parsed.Script == "" {
		return scriptPayload{}, false
	}
	return parsed, true
}
