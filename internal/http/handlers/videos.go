package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ugcstudio/internal/domain/fault"
)

type createVideoRequest struct {
	ImageURL    string `json:"imageUrl"`
	VideoPrompt string `json:"videoPrompt"`
	VideoModel  string `json:"videoModel"`
}

// CreateVideo submits a video generation task and returns its identifier.
// Progress is the caller's business, polled through VideoStatus.
func (a *App) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var req createVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.VideoPrompt) == "" {
		a.fail(w, fault.Invalid("video prompt is required"))
		return
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		a.fail(w, fault.Invalid("no uploaded image URL; upload an image first"))
		return
	}

	set := a.resolveSettings(r)
	if m := strings.TrimSpace(req.VideoModel); m != "" {
		set.VideoModel = m
	}

	taskID, exchange, err := a.Videos.CreateVideoTask(r.Context(), set.KieKey, req.ImageURL, req.VideoPrompt, set.VideoModel)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.Logger.Info().Str("task_id", taskID).Str("model", set.VideoModel).Msg("video task created")
	a.json(w, http.StatusOK, map[string]any{
		"taskId":      taskID,
		"apiRequest":  exchange.Request,
		"apiResponse": exchange.Response,
	})
}

// VideoStatus relays the provider's task record as-is. The client owns the
// state interpretation and the result URL fallback chain is available through
// the snapshot fields should the raw body be absent.
func (a *App) VideoStatus(w http.ResponseWriter, r *http.Request) {
	taskID := strings.TrimSpace(chi.URLParam(r, "taskId"))
	if taskID == "" {
		a.fail(w, fault.Invalid("task id is required"))
		return
	}
	set := a.resolveSettings(r)
	snap, err := a.Videos.TaskStatus(r.Context(), set.KieKey, taskID)
	if err != nil {
		a.fail(w, err)
		return
	}
	if len(snap.Raw) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(snap.Raw)
		return
	}
	a.json(w, http.StatusOK, snap)
}
