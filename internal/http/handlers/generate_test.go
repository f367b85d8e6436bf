package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"ugcstudio/internal/domain/fault"
	"ugcstudio/internal/providers/kie"
	"ugcstudio/internal/providers/openai"
	"ugcstudio/internal/store"
)

func TestGenerateScriptAggregatesMissingFields(t *testing.T) {
	scripts := &fakeScripts{}
	app := newTestApp(t, scripts, &fakeVideos{})

	rec := postJSON(t, app.GenerateScript, map[string]string{"productName": "เซรั่ม"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
	msg := errorMessage(t, rec)
	for _, field := range []string{"product details", "review style", "review objective"} {
		if !strings.Contains(msg, field) {
			t.Fatalf("message %q must name %q", msg, field)
		}
	}
	if strings.Contains(msg, "product name") {
		t.Fatalf("message %q names a field that was present", msg)
	}
	if scripts.calls != 0 {
		t.Fatalf("provider called despite failed validation")
	}
}

func TestGenerateScriptWithHeaderCredentials(t *testing.T) {
	scripts := &fakeScripts{scriptResult: &openai.ScriptResult{Script: "บทพูด", Caption: "แคปชั่น", Structured: true}}
	app := newTestApp(t, scripts, &fakeVideos{})

	header := http.Header{}
	header.Set("X-Config-Openai-Key", "sk-from-header")
	rec := postJSON(t, app.GenerateScript, map[string]string{
		"productName":     "เซรั่ม",
		"productDetails":  "บำรุงผิว",
		"reviewStyle":     "จริงใจ",
		"reviewObjective": "ยอดขาย",
	}, header)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", rec.Code, rec.Body.String())
	}
	if scripts.lastScriptIn.APIKey != "sk-from-header" {
		t.Fatalf("api key = %q, want the header value", scripts.lastScriptIn.APIKey)
	}
	if scripts.lastScriptIn.Model != store.DefaultOpenAIModel {
		t.Fatalf("model = %q, want the default", scripts.lastScriptIn.Model)
	}
	if scripts.lastScriptIn.RuleText != store.DefaultScriptRule {
		t.Fatalf("rule text must default when the account has none")
	}

	body := decodeBody(t, rec)
	if body["script"] != "บทพูด" || body["caption"] != "แคปชั่น" || body["structured"] != true {
		t.Fatalf("body = %v", body)
	}
	if body["apiRequest"] == nil || body["apiResponse"] == nil {
		t.Fatalf("echo fields missing: %v", body)
	}
}

func TestGenerateScriptAccountSettingsAndBodyOverride(t *testing.T) {
	scripts := &fakeScripts{scriptResult: &openai.ScriptResult{Script: "s"}}
	app := newTestApp(t, scripts, &fakeVideos{})
	token := registerAccount(t, app, "a@b.co")
	if _, err := app.Accounts.Put("a@b.co", store.Patch{
		OpenAIKey:   strPtr("sk-stored"),
		OpenAIModel: strPtr("gpt-4o"),
	}); err != nil {
		t.Fatalf("put: %v", err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	rec := postJSON(t, app.GenerateScript, map[string]string{
		"productName":          "a",
		"productDetails":       "b",
		"reviewStyle":          "c",
		"reviewObjective":      "d",
		"openaiModel":          "gpt-4.1-mini",
		"scriptGenerationRule": "body rule",
	}, header)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", rec.Code, rec.Body.String())
	}
	if scripts.lastScriptIn.APIKey != "sk-stored" {
		t.Fatalf("api key = %q, want the stored one", scripts.lastScriptIn.APIKey)
	}
	if scripts.lastScriptIn.Model != "gpt-4.1-mini" {
		t.Fatalf("model = %q, the body override must win", scripts.lastScriptIn.Model)
	}
	if scripts.lastScriptIn.RuleText != "body rule" {
		t.Fatalf("rule = %q, the body override must win", scripts.lastScriptIn.RuleText)
	}
}

func TestGenerateScriptErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"missing credential", &fault.MissingCredential{Key: "OpenAI"}, http.StatusBadRequest},
		{"upstream", &fault.Upstream{Provider: "openai", Message: "rate limited", Status: 429}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, &fakeScripts{scriptErr: tc.err}, &fakeVideos{})
			rec := postJSON(t, app.GenerateScript, map[string]string{
				"productName": "a", "productDetails": "b", "reviewStyle": "c", "reviewObjective": "d",
			}, nil)
			if rec.Code != tc.want {
				t.Fatalf("code = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestGenerateVideoPromptRequiresScript(t *testing.T) {
	scripts := &fakeScripts{prompt: "a prompt"}
	app := newTestApp(t, scripts, &fakeVideos{})

	rec := postJSON(t, app.GenerateVideoPrompt, map[string]string{"productName": "a"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
	if scripts.calls != 0 {
		t.Fatalf("provider called without a script")
	}

	rec = postJSON(t, app.GenerateVideoPrompt, map[string]string{"script": "สคริปต์"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", rec.Code, rec.Body.String())
	}
	if scripts.lastPromptIn.Script != "สคริปต์" {
		t.Fatalf("script = %q", scripts.lastPromptIn.Script)
	}
	if decodeBody(t, rec)["videoPrompt"] != "a prompt" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestUploadImageHandler(t *testing.T) {
	videos := &fakeVideos{uploadURL: "https://f/p.png"}
	app := newTestApp(t, &fakeScripts{}, videos)

	body, contentType := multipartImage(t, "image", "product.png", "image/png", []byte{1, 2, 3})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	app.UploadImage(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeBody(t, rec)
	if got["url"] != "https://f/p.png" || got["filename"] != "product.png" {
		t.Fatalf("body = %v", got)
	}

	// Wrong form field name.
	body, contentType = multipartImage(t, "file", "product.png", "image/png", []byte{1})
	req = httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	app.UploadImage(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing image part = %d, want 400", rec.Code)
	}

	// The gateway's own validation surfaces as 400 too.
	videos.uploadErr = fault.Invalid(`unsupported image type "image/gif" (expected jpeg, png or webp)`)
	body, contentType = multipartImage(t, "image", "anim.gif", "image/gif", []byte{1})
	req = httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	app.UploadImage(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unsupported type = %d, want 400", rec.Code)
	}
}

func TestCreateVideoValidationMessages(t *testing.T) {
	videos := &fakeVideos{taskID: "t-1"}
	app := newTestApp(t, &fakeScripts{}, videos)

	rec := postJSON(t, app.CreateVideo, map[string]string{"imageUrl": "https://f/p.png"}, nil)
	if rec.Code != http.StatusBadRequest || errorMessage(t, rec) != "video prompt is required" {
		t.Fatalf("missing prompt: code = %d, msg = %q", rec.Code, errorMessage(t, rec))
	}

	rec = postJSON(t, app.CreateVideo, map[string]string{"videoPrompt": "p"}, nil)
	if rec.Code != http.StatusBadRequest || errorMessage(t, rec) != "no uploaded image URL; upload an image first" {
		t.Fatalf("missing image: code = %d, msg = %q", rec.Code, errorMessage(t, rec))
	}
	if videos.calls != 0 {
		t.Fatalf("provider called despite failed validation")
	}

	rec = postJSON(t, app.CreateVideo, map[string]string{
		"videoPrompt": "p",
		"imageUrl":    "https://f/p.png",
		"videoModel":  "sora-2-hd",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	if videos.lastModel != "sora-2-hd" {
		t.Fatalf("model = %q, the body override must win", videos.lastModel)
	}
	if decodeBody(t, rec)["taskId"] != "t-1" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestVideoStatusPassesRawThrough(t *testing.T) {
	raw := `{"id":"t-1","state":"success","resultJson":"{\"resultUrls\":[\"https://v/out.mp4\"]}"}`
	videos := &fakeVideos{snapshot: &kie.TaskSnapshot{
		ID:    "t-1",
		State: "success",
		Raw:   json.RawMessage(raw),
	}}
	app := newTestApp(t, &fakeScripts{}, videos)

	req := httptest.NewRequest(http.MethodGet, "/api/video-status/t-1", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("taskId", "t-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	app.VideoStatus(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if !bytes.Equal(bytes.TrimSpace(rec.Body.Bytes()), []byte(raw)) {
		t.Fatalf("body = %q, want the provider payload untouched", rec.Body.String())
	}
}
