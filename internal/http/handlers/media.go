package handlers

import (
	"io"
	"net/http"
	"strings"

	"ugcstudio/internal/providers/kie"
)

// UploadImage accepts a multipart "image" part, validates it locally and
// forwards it to the file host. The hosted URL comes back for later reuse in
// the video request.
func (a *App) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(kie.MaxUploadBytes + 1024); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, kie.MaxUploadBytes+1))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "could not read image file")
		return
	}
	mime := header.Header.Get("Content-Type")
	if mime == "" || strings.EqualFold(mime, "application/octet-stream") {
		mime = http.DetectContentType(data)
	}

	set := a.resolveSettings(r)
	url, err := a.Videos.UploadImage(r.Context(), set.KieKey, data, header.Filename, mime)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.Logger.Info().Str("filename", header.Filename).Int("size", len(data)).Msg("image uploaded")
	a.json(w, http.StatusOK, map[string]string{"url": url, "filename": header.Filename})
}
