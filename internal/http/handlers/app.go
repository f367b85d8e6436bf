package handlers

import (
	"encoding/json"
	"net/http"

	"ugcstudio/internal/domain/fault"
	"ugcstudio/internal/infra"
	"ugcstudio/internal/middleware"
	"ugcstudio/internal/pipeline"
	"ugcstudio/internal/store"
)

// App is the handler container. Provider clients sit behind the pipeline's
// gateway interfaces so tests can stub them.
type App struct {
	Config   *infra.Config
	Logger   infra.Logger
	Accounts *store.Store
	Scripts  pipeline.ScriptGenerator
	Videos   pipeline.VideoService
}

func NewApp(cfg *infra.Config, logger infra.Logger, accounts *store.Store, scripts pipeline.ScriptGenerator, videos pipeline.VideoService) *App {
	return &App{Config: cfg, Logger: logger, Accounts: accounts, Scripts: scripts, Videos: videos}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{"error": map[string]string{"code": code, "message": message}})
}

// fail translates a fault into its HTTP shape.
func (a *App) fail(w http.ResponseWriter, err error) {
	switch {
	case isValidation(err):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case isMissingCredential(err):
		a.error(w, http.StatusBadRequest, "missing_credential", err.Error())
	case isAuth(err):
		a.error(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case isUpstream(err):
		a.error(w, http.StatusBadGateway, "upstream", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("internal error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func isValidation(err error) bool {
	_, ok := fault.AsValidation(err)
	return ok
}

func isMissingCredential(err error) bool {
	_, ok := fault.AsMissingCredential(err)
	return ok
}

func isAuth(err error) bool {
	_, ok := fault.AsAuth(err)
	return ok
}

func isUpstream(err error) bool {
	_, ok := fault.AsUpstream(err)
	return ok
}

// resolveSettings builds the effective settings for this request as a local
// value: account-stored settings when a bearer token resolved, direct header
// keys for the credential-less mode, and the process environment as the last
// key fallback. Nothing here is shared mutable state.
func (a *App) resolveSettings(r *http.Request) store.Effective {
	eff := a.Accounts.ResolveEffective(middleware.AccountFromContext(r.Context()))
	if k := r.Header.Get("X-Config-Openai-Key"); k != "" {
		eff.OpenAIKey = k
	}
	if k := r.Header.Get("X-Config-Kie-Key"); k != "" {
		eff.KieKey = k
	}
	if eff.OpenAIKey == "" {
		eff.OpenAIKey = a.Config.OpenAIAPIKey
	}
	if eff.KieKey == "" {
		eff.KieKey = a.Config.KieAPIKey
	}
	return eff
}
