// Package pipeline sequences the four-stage generation flow — upload the
// product photo, generate the Thai script, derive a video prompt, submit and
// watch the video task — on top of the provider gateways. Stage transitions
// are driven by explicit calls, never chained automatically, and each
// operation validates its own prerequisites.
package pipeline

import (
	"context"
	"strings"
	"time"

	"ugcstudio/internal/domain/fault"
	"ugcstudio/internal/infra"
	"ugcstudio/internal/providers/kie"
	"ugcstudio/internal/providers/openai"
	"ugcstudio/internal/store"
)

// ScriptGenerator is the LLM side of the provider gateway.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, in openai.ScriptInput) (*openai.ScriptResult, *openai.Exchange, error)
	GenerateVideoPrompt(ctx context.Context, in openai.PromptInput) (string, *openai.Exchange, error)
}

// VideoService is the video-provider side of the gateway.
type VideoService interface {
	UploadImage(ctx context.Context, apiKey string, data []byte, filename, mime string) (string, error)
	CreateVideoTask(ctx context.Context, apiKey, imageURL, prompt, model string) (string, *kie.Exchange, error)
	TaskStatus(ctx context.Context, apiKey, taskID string) (*kie.TaskSnapshot, error)
}

// Options configures a Pipeline. Zero intervals pick the production values.
type Options struct {
	Scripts ScriptGenerator
	Videos  VideoService
	Logger  infra.Logger

	PollInterval time.Duration
	WarnAfter    time.Duration
	WarnEvery    time.Duration
}

const (
	defaultPollInterval = 5 * time.Second
	defaultWarnAfter    = 4 * time.Minute
	defaultWarnEvery    = 30 * time.Second
)

// Pipeline drives generation sessions. It is safe for use by multiple
// sessions concurrently; per-session sequencing is the session's own concern.
type Pipeline struct {
	scripts ScriptGenerator
	videos  VideoService
	logger  infra.Logger

	pollInterval time.Duration
	warnAfter    time.Duration
	warnEvery    time.Duration
}

// New constructs a Pipeline.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		scripts:      opts.Scripts,
		videos:       opts.Videos,
		logger:       opts.Logger,
		pollInterval: opts.PollInterval,
		warnAfter:    opts.WarnAfter,
		warnEvery:    opts.WarnEvery,
	}
	if p.pollInterval <= 0 {
		p.pollInterval = defaultPollInterval
	}
	if p.warnAfter <= 0 {
		p.warnAfter = defaultWarnAfter
	}
	if p.warnEvery <= 0 {
		p.warnEvery = defaultWarnEvery
	}
	return p
}

// ImageFile is a locally selected product photo.
type ImageFile struct {
	Data     []byte
	Filename string
	Mime     string
}

// Form is the input of the first pipeline stage.
type Form struct {
	ProductName     string
	ProductDetails  string
	ReviewStyle     string
	ReviewObjective string
	Image           ImageFile
}

// PromptForm carries the product context for video-prompt derivation.
type PromptForm struct {
	ProductName    string
	ProductDetails string
	ReviewStyle    string
}

// UploadAndGenerateScript validates the form, uploads the image and then
// generates the script. Every missing required field is reported in one
// aggregated fault. If the upload fails, script generation is never attempted
// and the stage does not advance.
func (p *Pipeline) UploadAndGenerateScript(ctx context.Context, sess *Session, set store.Effective, form Form) error {
	if err := sess.begin(); err != nil {
		return err
	}
	defer sess.end()

	var missing []string
	if strings.TrimSpace(form.ProductName) == "" {
		missing = append(missing, "product name")
	}
	if strings.TrimSpace(form.ProductDetails) == "" {
		missing = append(missing, "product details")
	}
	if strings.TrimSpace(form.ReviewStyle) == "" {
		missing = append(missing, "review style")
	}
	if strings.TrimSpace(form.ReviewObjective) == "" {
		missing = append(missing, "review objective")
	}
	if len(form.Image.Data) == 0 {
		missing = append(missing, "image")
	}
	if len(missing) > 0 {
		sess.log("validate", "missing: "+strings.Join(missing, ", "), "error")
		return fault.MissingFields(missing...)
	}

	url, err := p.videos.UploadImage(ctx, set.KieKey, form.Image.Data, form.Image.Filename, form.Image.Mime)
	if err != nil {
		sess.log("upload", err.Error(), "error")
		return err
	}
	sess.mu.Lock()
	sess.imageURL = url
	sess.stage = StageImageUploaded
	sess.logLocked("upload", "image uploaded: "+url, "success")
	sess.mu.Unlock()

	result, _, err := p.scripts.GenerateScript(ctx, openai.ScriptInput{
		APIKey:          set.OpenAIKey,
		Model:           set.OpenAIModel,
		RuleText:        set.ScriptRule,
		ProductName:     form.ProductName,
		ProductDetails:  form.ProductDetails,
		ReviewStyle:     form.ReviewStyle,
		ReviewObjective: form.ReviewObjective,
	})
	if err != nil {
		sess.log("script", err.Error(), "error")
		return err
	}
	sess.mu.Lock()
	sess.script = result.Script
	sess.caption = result.Caption
	sess.stage = StageScriptReady
	sess.logLocked("script", "script generated", "success")
	sess.mu.Unlock()
	return nil
}

// UploadOnly uploads the image without generating a script, entering the
// manual-prompt path.
func (p *Pipeline) UploadOnly(ctx context.Context, sess *Session, set store.Effective, img ImageFile) error {
	if err := sess.begin(); err != nil {
		return err
	}
	defer sess.end()

	if len(img.Data) == 0 {
		sess.log("validate", "missing: image", "error")
		return fault.MissingFields("image")
	}
	url, err := p.videos.UploadImage(ctx, set.KieKey, img.Data, img.Filename, img.Mime)
	if err != nil {
		sess.log("upload", err.Error(), "error")
		return err
	}
	sess.mu.Lock()
	sess.imageURL = url
	sess.script = ""
	sess.caption = ""
	sess.videoPrompt = ""
	sess.stage = StageImageUploaded
	sess.logLocked("upload", "image uploaded: "+url, "success")
	sess.mu.Unlock()
	return nil
}

// GenerateVideoPrompt derives the video prompt from the current script text,
// generated or user-edited.
func (p *Pipeline) GenerateVideoPrompt(ctx context.Context, sess *Session, set store.Effective, form PromptForm) error {
	if err := sess.begin(); err != nil {
		return err
	}
	defer sess.end()

	snap := sess.Snapshot()
	if strings.TrimSpace(snap.Script) == "" {
		sess.log("prompt", "script text is required", "error")
		return fault.Invalid("script text is required")
	}
	prompt, _, err := p.scripts.GenerateVideoPrompt(ctx, openai.PromptInput{
		APIKey:         set.OpenAIKey,
		Model:          set.OpenAIModel,
		RuleText:       set.VideoPromptRule,
		ProductName:    form.ProductName,
		ProductDetails: form.ProductDetails,
		ReviewStyle:    form.ReviewStyle,
		Script:         snap.Script,
	})
	if err != nil {
		sess.log("prompt", err.Error(), "error")
		return err
	}
	sess.mu.Lock()
	sess.videoPrompt = prompt
	sess.stage = StagePromptReady
	sess.logLocked("prompt", "video prompt generated", "success")
	sess.mu.Unlock()
	return nil
}

// SubmitVideoTask submits the video-generation task and starts watching it.
// Prompt and image URL are validated separately: a user on the manual-prompt
// path may have a prompt without ever generating a script, and vice versa.
func (p *Pipeline) SubmitVideoTask(ctx context.Context, sess *Session, set store.Effective) error {
	if err := sess.begin(); err != nil {
		return err
	}
	defer sess.end()

	snap := sess.Snapshot()
	if strings.TrimSpace(snap.VideoPrompt) == "" {
		sess.log("video", "video prompt is required", "error")
		return fault.Invalid("video prompt is required")
	}
	if strings.TrimSpace(snap.ImageURL) == "" {
		sess.log("video", "no uploaded image URL; upload an image first", "error")
		return fault.Invalid("no uploaded image URL; upload an image first")
	}
	taskID, _, err := p.videos.CreateVideoTask(ctx, set.KieKey, snap.ImageURL, snap.VideoPrompt, set.VideoModel)
	if err != nil {
		sess.log("video", err.Error(), "error")
		return err
	}
	w := p.newWatcher(sess, set.KieKey, taskID)
	sess.mu.Lock()
	sess.taskID = taskID
	sess.stage = StageTaskSubmitted
	if sess.watch != nil {
		sess.watch.stop()
	}
	sess.watch = w
	sess.logLocked("video", "task submitted: "+taskID, "success")
	sess.mu.Unlock()
	go w.run()
	return nil
}

// Reset clears every session field, returns the stage to Idle and cancels any
// active poll.
func (p *Pipeline) Reset(sess *Session) {
	if w := sess.reset(); w != nil {
		w.stop()
	}
	sess.log("reset", "session cleared", "info")
}
