package handlers

import (
	"net/http"

	"catalogo/internal/transform"
)

// UploadImage stores an image without transformation. Used by the client as
// the fallback when no transform result exists at submit time. Validation
// mirrors the transform endpoint: allow-listed MIME type, size ceiling.
func (a *App) UploadImage(w http.ResponseWriter, r *http.Request) {
	input, ok := a.readImageForm(w, r)
	if !ok {
		return
	}
	if len(input.ImageData) == 0 {
		a.error(w, r, http.StatusBadRequest, "missing_image", nil)
		return
	}
	if !transform.AllowedMIME(input.MIMEType) {
		a.validationError(w, r, "unsupported_type")
		return
	}
	if len(input.ImageData) > transform.MaxImageBytes {
		a.validationError(w, r, "file_too_large")
		return
	}

	ext, ok := transform.ExtensionFor(input.MIMEType)
	if !ok {
		ext = ".jpg"
	}
	filename := transform.RandomHex(16) + ext
	key, err := a.Store.Write(r.Context(), "products/"+filename, input.ImageData)
	if err != nil {
		a.error(w, r, http.StatusInternalServerError, "upload_failed", err)
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"path":     a.Store.PublicPath(key),
		"filename": filename,
	})
}
