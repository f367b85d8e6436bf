package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"ugcstudio/internal/domain/fault"
	"ugcstudio/internal/providers/openai"
)

type scriptRequest struct {
	ProductName     string `json:"productName"`
	ProductDetails  string `json:"productDetails"`
	ReviewStyle     string `json:"reviewStyle"`
	ReviewObjective string `json:"reviewObjective"`
	OpenAIModel     string `json:"openaiModel"`
	ScriptRule      string `json:"scriptGenerationRule"`
}

type promptRequest struct {
	ProductName     string `json:"productName"`
	ProductDetails  string `json:"productDetails"`
	ReviewStyle     string `json:"reviewStyle"`
	Script          string `json:"script"`
	OpenAIModel     string `json:"openaiModel"`
	VideoPromptRule string `json:"videoPromptRule"`
}

// GenerateScript produces the spoken review script and social caption for a
// product. The raw exchange with the language model is echoed back so the
// client can show what was actually sent.
func (a *App) GenerateScript(w http.ResponseWriter, r *http.Request) {
	var req scriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	var missing []string
	if strings.TrimSpace(req.ProductName) == "" {
		missing = append(missing, "product name")
	}
	if strings.TrimSpace(req.ProductDetails) == "" {
		missing = append(missing, "product details")
	}
	if strings.TrimSpace(req.ReviewStyle) == "" {
		missing = append(missing, "review style")
	}
	if strings.TrimSpace(req.ReviewObjective) == "" {
		missing = append(missing, "review objective")
	}
	if len(missing) > 0 {
		a.fail(w, fault.MissingFields(missing...))
		return
	}

	set := a.resolveSettings(r)
	if m := strings.TrimSpace(req.OpenAIModel); m != "" {
		set.OpenAIModel = m
	}
	if rule := strings.TrimSpace(req.ScriptRule); rule != "" {
		set.ScriptRule = rule
	}

	result, exchange, err := a.Scripts.GenerateScript(r.Context(), openai.ScriptInput{
		APIKey:          set.OpenAIKey,
		Model:           set.OpenAIModel,
		RuleText:        set.ScriptRule,
		ProductName:     req.ProductName,
		ProductDetails:  req.ProductDetails,
		ReviewStyle:     req.ReviewStyle,
		ReviewObjective: req.ReviewObjective,
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	a.Logger.Info().Str("model", set.OpenAIModel).Bool("structured", result.Structured).Msg("script generated")
	a.json(w, http.StatusOK, map[string]any{
		"script":      result.Script,
		"caption":     result.Caption,
		"structured":  result.Structured,
		"apiRequest":  exchange.Request,
		"apiResponse": exchange.Response,
	})
}

// GenerateVideoPrompt turns an approved script into an English video
// generation prompt that keeps the script as the spoken dialogue.
func (a *App) GenerateVideoPrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Script) == "" {
		a.fail(w, fault.Invalid("script text is required"))
		return
	}

	set := a.resolveSettings(r)
	if m := strings.TrimSpace(req.OpenAIModel); m != "" {
		set.OpenAIModel = m
	}
	if rule := strings.TrimSpace(req.VideoPromptRule); rule != "" {
		set.VideoPromptRule = rule
	}

	prompt, exchange, err := a.Scripts.GenerateVideoPrompt(r.Context(), openai.PromptInput{
		APIKey:         set.OpenAIKey,
		Model:          set.OpenAIModel,
		RuleText:       set.VideoPromptRule,
		ProductName:    req.ProductName,
		ProductDetails: req.ProductDetails,
		ReviewStyle:    req.ReviewStyle,
		Script:         req.Script,
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	a.Logger.Info().Str("model", set.OpenAIModel).Msg("video prompt generated")
	a.json(w, http.StatusOK, map[string]any{
		"videoPrompt": prompt,
		"apiRequest":  exchange.Request,
		"apiResponse": exchange.Response,
	})
}
