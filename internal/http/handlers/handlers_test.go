package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"ugcstudio/internal/infra"
	"ugcstudio/internal/providers/kie"
	"ugcstudio/internal/providers/openai"
	"ugcstudio/internal/store"
)

type fakeScripts struct {
	lastScriptIn openai.ScriptInput
	lastPromptIn openai.PromptInput
	scriptResult *openai.ScriptResult
	scriptErr    error
	prompt       string
	promptErr    error
	calls        int
}

func (f *fakeScripts) GenerateScript(_ context.Context, in openai.ScriptInput) (*openai.ScriptResult, *openai.Exchange, error) {
	f.calls++
	f.lastScriptIn = in
	if f.scriptErr != nil {
		return nil, nil, f.scriptErr
	}
	return f.scriptResult, &openai.Exchange{Request: "req", Response: json.RawMessage(`{"ok":true}`)}, nil
}

func (f *fakeScripts) GenerateVideoPrompt(_ context.Context, in openai.PromptInput) (string, *openai.Exchange, error) {
	f.calls++
	f.lastPromptIn = in
	if f.promptErr != nil {
		return "", nil, f.promptErr
	}
	return f.prompt, &openai.Exchange{Request: "req", Response: json.RawMessage(`{"ok":true}`)}, nil
}

type fakeVideos struct {
	lastUploadKey string
	lastCreateKey string
	lastModel     string
	uploadURL     string
	uploadErr     error
	taskID        string
	createErr     error
	snapshot      *kie.TaskSnapshot
	statusErr     error
	calls         int
}

func (f *fakeVideos) UploadImage(_ context.Context, apiKey string, _ []byte, _, _ string) (string, error) {
	f.calls++
	f.lastUploadKey = apiKey
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.uploadURL, nil
}

func (f *fakeVideos) CreateVideoTask(_ context.Context, apiKey, _, _, model string) (string, *kie.Exchange, error) {
	f.calls++
	f.lastCreateKey = apiKey
	f.lastModel = model
	if f.createErr != nil {
		return "", nil, f.createErr
	}
	return f.taskID, &kie.Exchange{Request: "req", Response: json.RawMessage(`{"ok":true}`)}, nil
}

func (f *fakeVideos) TaskStatus(_ context.Context, apiKey, _ string) (*kie.TaskSnapshot, error) {
	f.calls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.snapshot, nil
}

func strPtr(v string) *string { return &v }

func newTestApp(t *testing.T, scripts *fakeScripts, videos *fakeVideos) *App {
	t.Helper()
	accounts, err := store.Open(filepath.Join(t.TempDir(), "users.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	cfg := &infra.Config{}
	return NewApp(cfg, zerolog.Nop(), accounts, scripts, videos)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	e, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error envelope in %q", rec.Body.String())
	}
	msg, _ := e["message"].(string)
	return msg
}

func multipartImage(t *testing.T, field, filename, mime string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	h["Content-Type"] = []string{mime}
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, w.FormDataContentType()
}
