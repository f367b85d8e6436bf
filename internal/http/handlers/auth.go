package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"ugcstudio/internal/middleware"
	"ugcstudio/internal/store"
)

type registerRequest struct {
	Email     string `json:"email"`
	Passcode  string `json:"passcode"`
	OpenAIKey string `json:"openaiKey"`
	KieKey    string `json:"kieKey"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Passcode string `json:"passcode"`
}

func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	p := store.Patch{}
	if strings.TrimSpace(req.OpenAIKey) != "" {
		p.OpenAIKey = &req.OpenAIKey
	}
	if strings.TrimSpace(req.KieKey) != "" {
		p.KieKey = &req.KieKey
	}
	acc, err := a.Accounts.Register(req.Email, req.Passcode, p)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.Logger.Info().Str("email", acc.Email).Msg("account registered")
	a.json(w, http.StatusOK, map[string]string{"email": acc.Email, "token": acc.Token})
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	acc, err := a.Accounts.Login(req.Email, req.Passcode)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.Logger.Info().Str("email", acc.Email).Msg("login")
	a.json(w, http.StatusOK, map[string]string{"email": acc.Email, "token": acc.Token})
}

// Verify reports whether the presented token still maps to an account, and
// whether that account already carries provider keys. The client uses this to
// decide which setup screens to show.
func (a *App) Verify(w http.ResponseWriter, r *http.Request) {
	acc, err := a.Accounts.AccountByToken(middleware.BearerToken(r))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"email":        acc.Email,
		"hasOpenAIKey": acc.OpenAIKey != "",
		"hasKieKey":    acc.KieKey != "",
	})
}

func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.Accounts.Logout(middleware.BearerToken(r)); err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
