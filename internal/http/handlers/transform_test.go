package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"catalogo/internal/middleware"
	"catalogo/internal/providers/genai"
	"catalogo/internal/storage"
	"catalogo/internal/transform"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

type fakeEditor struct {
	calls int
	reply *genai.EditedImage
	err   error
}

func (f *fakeEditor) EditImage(ctx context.Context, req genai.EditRequest) (*genai.EditedImage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func newTransformApp(t *testing.T, editor transform.Editor) (*App, *storage.FileStore) {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	logger := zerolog.New(io.Discard)
	svc := transform.NewService(editor, store, logger)
	return NewApp(logger, svc, store, nil), store
}

func multipartImageRequest(t *testing.T, imageBytes []byte, mimeType, prompt string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if imageBytes != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="image"; filename="source.img"`)
		header.Set("Content-Type", mimeType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(imageBytes); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if prompt != "" {
		if err := writer.WriteField("prompt", prompt); err != nil {
			t.Fatalf("write prompt: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/v1/admin/products/transform-image", body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	return r
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (errMsg, code, details string) {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"], body["code"], body["details"]
}

func TestTransformImageMissingCredentialIs503(t *testing.T) {
	app, _ := newTransformApp(t, nil)

	rec := httptest.NewRecorder()
	app.TransformImage(rec, multipartImageRequest(t, []byte{1}, "image/png", "p"))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	errMsg, code, _ := decodeError(t, rec)
	if code != "missing_api_key" {
		t.Fatalf("code = %q", code)
	}
	if errMsg != "GEMINI_API_KEY no está configurada en el servidor" {
		t.Fatalf("error = %q, want the Spanish default", errMsg)
	}
}

func TestTransformImageLocalizesToEnglish(t *testing.T) {
	app, _ := newTransformApp(t, nil)
	handler := middleware.Locale("es")(http.HandlerFunc(app.TransformImage))

	r := multipartImageRequest(t, []byte{1}, "image/png", "p")
	r.Header.Set("X-Locale", "en")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	errMsg, _, _ := decodeError(t, rec)
	if errMsg != "GEMINI_API_KEY is not configured on the server" {
		t.Fatalf("error = %q, want the English message", errMsg)
	}
}

func TestTransformImageRejectsTextFileBeforeModelCall(t *testing.T) {
	editor := &fakeEditor{reply: &genai.EditedImage{Data: pngHeader, MIMEType: "image/png"}}
	app, _ := newTransformApp(t, editor)

	rec := httptest.NewRecorder()
	app.TransformImage(rec, multipartImageRequest(t, []byte("not an image"), "text/plain", "p"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if _, code, _ := decodeError(t, rec); code != "unsupported_type" {
		t.Fatalf("code = %q", code)
	}
	if editor.calls != 0 {
		t.Fatalf("external call made for an invalid file")
	}
}

func TestTransformImageMissingImageField(t *testing.T) {
	app, _ := newTransformApp(t, &fakeEditor{})

	rec := httptest.NewRecorder()
	app.TransformImage(rec, multipartImageRequest(t, nil, "", "only a prompt"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if _, code, _ := decodeError(t, rec); code != "missing_image" {
		t.Fatalf("code = %q", code)
	}
}

func TestTransformImageSizeBoundary(t *testing.T) {
	editor := &fakeEditor{reply: &genai.EditedImage{Data: pngHeader, MIMEType: "image/png"}}
	app, _ := newTransformApp(t, editor)

	rec := httptest.NewRecorder()
	app.TransformImage(rec, multipartImageRequest(t, make([]byte, transform.MaxImageBytes), "image/png", "p"))
	if rec.Code != http.StatusOK {
		t.Fatalf("exact ceiling: status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.TransformImage(rec, multipartImageRequest(t, make([]byte, transform.MaxImageBytes+1), "image/png", "p"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("one byte over: status = %d, want 400", rec.Code)
	}
	if _, code, _ := decodeError(t, rec); code != "file_too_large" {
		t.Fatalf("code = %q", code)
	}
}

func TestTransformImageUpstreamFailures(t *testing.T) {
	tests := []struct {
		err      error
		wantCode string
	}{
		{err: genai.ErrNoCandidates, wantCode: "model_no_candidates"},
		{err: genai.ErrNoParts, wantCode: "model_no_parts"},
		{err: genai.ErrNoImagePart, wantCode: "model_no_image"},
	}

	for _, tc := range tests {
		t.Run(tc.wantCode, func(t *testing.T) {
			app, _ := newTransformApp(t, &fakeEditor{err: tc.err})

			rec := httptest.NewRecorder()
			app.TransformImage(rec, multipartImageRequest(t, []byte{1}, "image/png", "p"))

			if rec.Code != http.StatusBadGateway {
				t.Fatalf("status = %d, want 502", rec.Code)
			}
			if _, code, _ := decodeError(t, rec); code != tc.wantCode {
				t.Fatalf("code = %q, want %q", code, tc.wantCode)
			}
		})
	}
}

func TestTransformImageTransportFailureIs500(t *testing.T) {
	app, _ := newTransformApp(t, &fakeEditor{err: errors.New("gemini status 500: boom")})

	rec := httptest.NewRecorder()
	app.TransformImage(rec, multipartImageRequest(t, []byte{1}, "image/png", "p"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	_, code, details := decodeError(t, rec)
	if code != "transform_failed" {
		t.Fatalf("code = %q", code)
	}
	if details == "" {
		t.Fatalf("details should carry the underlying error")
	}
}

func TestTransformImageSuccessRoundTrip(t *testing.T) {
	edited := append(append([]byte{}, pngHeader...), 0xAA, 0xBB)
	app, store := newTransformApp(t, &fakeEditor{reply: &genai.EditedImage{Data: edited, MIMEType: "image/png"}})

	rec := httptest.NewRecorder()
	app.TransformImage(rec, multipartImageRequest(t, []byte{1, 2}, "image/jpeg", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Success       bool   `json:"success"`
		Path          string `json:"path"`
		Filename      string `json:"filename"`
		AppliedPrompt string `json:"appliedPrompt"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success {
		t.Fatalf("success = false")
	}
	if body.Path != "/products/"+body.Filename {
		t.Fatalf("path = %q, filename = %q", body.Path, body.Filename)
	}
	// Omitted prompt: the effective default is echoed back so the client can
	// reconcile what was applied.
	if body.AppliedPrompt != transform.DefaultPrompt {
		t.Fatalf("appliedPrompt = %q, want default", body.AppliedPrompt)
	}

	stored, err := os.ReadFile(filepath.Join(store.BasePath(), "products", body.Filename))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(stored, edited) {
		t.Fatalf("stored bytes differ from the model reply")
	}
}

func TestTransformImageConcurrentRequestsGetDistinctFiles(t *testing.T) {
	app, _ := newTransformApp(t, &fakeEditor{reply: &genai.EditedImage{Data: pngHeader, MIMEType: "image/png"}})

	filenames := make(map[string]bool)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		app.TransformImage(rec, multipartImageRequest(t, []byte{byte(i)}, "image/png", fmt.Sprintf("prompt %d", i)))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
		var body struct {
			Filename string `json:"filename"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if filenames[body.Filename] {
			t.Fatalf("filename %q repeated", body.Filename)
		}
		filenames[body.Filename] = true
	}
}
