package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestUploadImageStoresFile(t *testing.T) {
	app, store := newTransformApp(t, nil)
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01}

	rec := httptest.NewRecorder()
	app.UploadImage(rec, multipartImageRequest(t, payload, "image/jpeg", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Path     string `json:"path"`
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !regexp.MustCompile(`^[0-9a-f]{32}\.jpg$`).MatchString(body.Filename) {
		t.Fatalf("filename = %q", body.Filename)
	}
	if body.Path != "/products/"+body.Filename {
		t.Fatalf("path = %q", body.Path)
	}

	stored, err := os.ReadFile(filepath.Join(store.BasePath(), "products", body.Filename))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(stored, payload) {
		t.Fatalf("stored bytes differ from upload")
	}
}

func TestUploadImageValidation(t *testing.T) {
	tests := []struct {
		name     string
		image    []byte
		mimeType string
		wantCode string
	}{
		{name: "missing image", image: nil, mimeType: "", wantCode: "missing_image"},
		{name: "disallowed type", image: []byte("plain text"), mimeType: "text/plain", wantCode: "unsupported_type"},
		{name: "pdf rejected", image: []byte("%PDF-1.4"), mimeType: "application/pdf", wantCode: "unsupported_type"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app, _ := newTransformApp(t, nil)

			var req *http.Request
			if tc.image == nil {
				req = multipartImageRequest(t, nil, "", "unused")
			} else {
				req = multipartImageRequest(t, tc.image, tc.mimeType, "")
			}
			rec := httptest.NewRecorder()
			app.UploadImage(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if _, code, _ := decodeError(t, rec); code != tc.wantCode {
				t.Fatalf("code = %q, want %q", code, tc.wantCode)
			}
		})
	}
}

func TestUploadImageUnsupportedTypeListsAllowed(t *testing.T) {
	app, _ := newTransformApp(t, nil)

	rec := httptest.NewRecorder()
	app.UploadImage(rec, multipartImageRequest(t, []byte("x"), "video/mp4", ""))

	errMsg, _, _ := decodeError(t, rec)
	if !strings.Contains(errMsg, "image/png") || !strings.Contains(errMsg, "image/webp") {
		t.Fatalf("error message should enumerate allowed types, got %q", errMsg)
	}
}
