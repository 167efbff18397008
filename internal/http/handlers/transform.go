package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"catalogo/internal/middleware"
	"catalogo/internal/transform"
)

// TransformImage accepts a multipart request with one image field and an
// optional prompt field, runs the transform pipeline, and returns the stored
// result. Every failure maps to a status class: 503 configuration, 400
// validation, 502 upstream anomaly, 500 unexpected.
func (a *App) TransformImage(w http.ResponseWriter, r *http.Request) {
	input, ok := a.readImageForm(w, r)
	if !ok {
		return
	}
	input.Prompt = r.FormValue("prompt")
	input.RequestID = middleware.RequestIDFromContext(r.Context())

	result, err := a.Transformer.Transform(r.Context(), input)
	if err != nil {
		a.transformError(w, r, err)
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"success":       true,
		"path":          result.Path,
		"filename":      result.Filename,
		"appliedPrompt": result.AppliedPrompt,
	})
}

func (a *App) transformError(w http.ResponseWriter, r *http.Request, err error) {
	var terr *transform.Error
	if !errors.As(err, &terr) {
		a.error(w, r, http.StatusInternalServerError, "transform_failed", err)
		return
	}
	switch terr.Kind {
	case transform.KindConfiguration:
		a.error(w, r, http.StatusServiceUnavailable, terr.Code, terr.Err)
	case transform.KindValidation:
		a.validationError(w, r, terr.Code)
	case transform.KindUpstream:
		a.error(w, r, http.StatusBadGateway, terr.Code, terr.Err)
	default:
		a.error(w, r, http.StatusInternalServerError, terr.Code, terr.Err)
	}
}

func (a *App) validationError(w http.ResponseWriter, r *http.Request, code string) {
	switch code {
	case "unsupported_type":
		a.error(w, r, http.StatusBadRequest, code, nil, strings.Join(transform.AllowedMIMEList(), ", "))
	case "file_too_large":
		a.error(w, r, http.StatusBadRequest, code, nil, transform.MaxImageBytes/1024/1024)
	default:
		a.error(w, r, http.StatusBadRequest, code, nil)
	}
}

// readImageForm parses the multipart body and pulls out the image field with
// its declared MIME type. A missing image is left for the service to report
// so the validation order stays in one place. Reads are capped one byte past
// the ceiling; the service turns that overflow into a size failure.
func (a *App) readImageForm(w http.ResponseWriter, r *http.Request) (transform.Input, bool) {
	if err := r.ParseMultipartForm(transform.MaxImageBytes + 1<<20); err != nil {
		a.error(w, r, http.StatusBadRequest, "invalid_payload", err)
		return transform.Input{}, false
	}

	var input transform.Input
	file, header, err := r.FormFile("image")
	if err != nil {
		return input, true
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, transform.MaxImageBytes+1))
	if err != nil {
		a.error(w, r, http.StatusBadRequest, "invalid_payload", err)
		return transform.Input{}, false
	}
	input.ImageData = data
	input.MIMEType = header.Header.Get("Content-Type")
	return input, true
}
