// Package kie talks to the Kie.ai API: image hosting for the product photo
// and the Sora image-to-video task endpoints. Video generation is
// asynchronous; the provider owns the task and this client only submits it
// and reads snapshots of its state.
package kie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"ugcstudio/internal/domain/fault"
)

const (
	providerName   = "kie.ai"
	defaultBaseURL = "https://api.kie.ai"
	defaultTimeout = 60 * time.Second

	// MaxUploadBytes is the upload ceiling enforced before any network call.
	MaxUploadBytes = 10 << 20
)

var allowedImageMIMEs = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// AllowedImageMIME reports whether the mime type is accepted for upload.
func AllowedImageMIME(mime string) bool {
	_, ok := allowedImageMIMEs[strings.ToLower(strings.TrimSpace(mime))]
	return ok
}

// Options controls how the client is configured.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client is a stateless Kie.ai client; the API key is supplied per call.
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

// VideoParams are the fixed generation parameters attached to every task.
const (
	videoAspectRatio    = "9:16"
	videoDurationSecond = 5
)

type createVideoRequest struct {
	Model           string   `json:"model"`
	Prompt          string   `json:"prompt"`
	ImageURLs       []string `json:"image_urls"`
	AspectRatio     string   `json:"aspect_ratio"`
	DurationSeconds int      `json:"duration_seconds"`
}

type createVideoResponse struct {
	ID     string `json:"id"`
	TaskID string `json:"taskId"`
	Data   struct {
		TaskID string `json:"taskId"`
	} `json:"data"`
}

type uploadResponse struct {
	URL         string `json:"url"`
	FileURL     string `json:"fileUrl"`
	DownloadURL string `json:"downloadUrl"`
	Filename    string `json:"filename"`
}

type errorResponse struct {
	Message string `json:"message"`
	Msg     string `json:"msg"`
	Error   string `json:"error"`
}

// Exchange captures the outbound request payload and the provider's raw
// response for debug echo on the API surface.
type Exchange struct {
	Request  any             `json:"apiRequest"`
	Response json.RawMessage `json:"apiResponse"`
}

// UploadImage pushes the product photo to the provider's file host and
// returns its public URL. MIME type and size are validated before the request
// is built; violating payloads never reach the network.
func (c *Client) UploadImage(ctx context.Context, apiKey string, data []byte, filename, mime string) (string, error) {
	if !AllowedImageMIME(mime) {
		return "", fault.Invalid("unsupported image type %q (expected jpeg, png or webp)", mime)
	}
	if len(data) > MaxUploadBytes {
		return "", fault.Invalid("image exceeds the 10MB limit")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", &fault.MissingCredential{Key: "Kie.ai"}
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("kie: build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("kie: write form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("kie: close form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &buf)
	if err != nil {
		return "", fmt.Errorf("kie: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	body, status, err := c.do(httpReq)
	if err != nil {
		return "", err
	}
	if status >= 300 {
		return "", &fault.Upstream{Provider: providerName, Message: upstreamMessage(body, status), Status: status}
	}
	var out uploadResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &fault.Upstream{Provider: providerName, Message: "malformed upload response", Status: status}
	}
	url := firstNonEmpty(out.URL, out.FileURL, out.DownloadURL)
	if url == "" {
		return "", &fault.Upstream{Provider: providerName, Message: "upload response carried no file URL", Status: status}
	}
	return url, nil
}

// CreateVideoTask submits an image-to-video generation task and returns the
// provider's opaque task id.
func (c *Client) CreateVideoTask(ctx context.Context, apiKey, imageURL, prompt, model string) (string, *Exchange, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", nil, &fault.MissingCredential{Key: "Kie.ai"}
	}
	payload := createVideoRequest{
		Model:           model,
		Prompt:          prompt,
		ImageURLs:       []string{imageURL},
		AspectRatio:     videoAspectRatio,
		DurationSeconds: videoDurationSecond,
	}
	exchange := &Exchange{Request: payload}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", exchange, fmt.Errorf("kie: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/video/sora/generations", bytes.NewReader(raw))
	if err != nil {
		return "", exchange, fmt.Errorf("kie: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(httpReq)
	if err != nil {
		return "", exchange, err
	}
	exchange.Response = append(json.RawMessage(nil), body...)
	if status >= 300 {
		return "", exchange, &fault.Upstream{Provider: providerName, Message: upstreamMessage(body, status), Status: status}
	}
	var out createVideoResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", exchange, &fault.Upstream{Provider: providerName, Message: "malformed creation response", Status: status}
	}
	taskID := firstNonEmpty(out.ID, out.TaskID, out.Data.TaskID)
	if taskID == "" {
		return "", exchange, &fault.Upstream{Provider: providerName, Message: "video creation returned no task id", Status: status}
	}
	return taskID, exchange, nil
}

// TaskStatus fetches a snapshot of the task's state. Pure read, no side
// effects.
func (c *Client) TaskStatus(ctx context.Context, apiKey, taskID string) (*TaskSnapshot, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, &fault.MissingCredential{Key: "Kie.ai"}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/video/sora/generations/"+taskID, nil)
	if err != nil {
		return nil, fmt.Errorf("kie: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	body, status, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, &fault.Upstream{Provider: providerName, Message: upstreamMessage(body, status), Status: status}
	}
	var snap TaskSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, &fault.Upstream{Provider: providerName, Message: "malformed status response", Status: status}
	}
	snap.Raw = append(json.RawMessage(nil), body...)
	return &snap, nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, &fault.Upstream{Provider: providerName, Message: "request failed"}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &fault.Upstream{Provider: providerName, Message: "failed to read response"}
	}
	return body, resp.StatusCode, nil
}

func upstreamMessage(body []byte, status int) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil {
		if msg := firstNonEmpty(e.Message, e.Msg, e.Error); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("status %d", status)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}
