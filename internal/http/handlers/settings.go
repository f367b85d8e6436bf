package handlers

import (
	"encoding/json"
	"net/http"

	"ugcstudio/internal/middleware"
	"ugcstudio/internal/store"
)

type settingsPatch struct {
	OpenAIKey       *string `json:"openaiKey"`
	KieKey          *string `json:"kieKey"`
	OpenAIModel     *string `json:"openaiModel"`
	VideoModel      *string `json:"videoModel"`
	ScriptRule      *string `json:"scriptGenerationRule"`
	VideoPromptRule *string `json:"videoPromptRule"`
}

// GetSettings returns the authenticated account's stored settings. Keys are
// never echoed whole; only a recognizable prefix survives.
func (a *App) GetSettings(w http.ResponseWriter, r *http.Request) {
	acc, err := a.Accounts.AccountByToken(middleware.BearerToken(r))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{
		"openaiKey":            store.MaskKey(acc.OpenAIKey),
		"kieKey":               store.MaskKey(acc.KieKey),
		"openaiModel":          acc.OpenAIModel,
		"videoModel":           acc.VideoModel,
		"scriptGenerationRule": acc.ScriptRule,
		"videoPromptRule":      acc.VideoPromptRule,
	})
}

// SaveSettings merges a partial update into the account record. Fields absent
// from the body are left untouched; explicit empty strings clear the value.
func (a *App) SaveSettings(w http.ResponseWriter, r *http.Request) {
	acc, err := a.Accounts.AccountByToken(middleware.BearerToken(r))
	if err != nil {
		a.fail(w, err)
		return
	}
	var req settingsPatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if _, err := a.Accounts.Put(acc.Email, store.Patch{
		OpenAIKey:       req.OpenAIKey,
		KieKey:          req.KieKey,
		OpenAIModel:     req.OpenAIModel,
		VideoModel:      req.VideoModel,
		ScriptRule:      req.ScriptRule,
		VideoPromptRule: req.VideoPromptRule,
	}); err != nil {
		a.fail(w, err)
		return
	}
	a.Logger.Info().Str("email", acc.Email).Msg("settings saved")
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
