package transform

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"catalogo/internal/infra"
	"catalogo/internal/providers/genai"
	"catalogo/internal/storage"
)

// MaxImageBytes is the ceiling for a source image. Inclusive: an image of
// exactly this size is accepted.
const MaxImageBytes = 5 << 20

// productsPrefix is the storage key prefix for generated images.
const productsPrefix = "products"

var allowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// AllowedMIME reports whether the declared content type is on the allow-list.
func AllowedMIME(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	_, ok := allowedMIMETypes[mimeType]
	return ok
}

// AllowedMIMEList returns the allow-list for error messages.
func AllowedMIMEList() []string {
	return []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif"}
}

// Editor is the model call the service depends on; satisfied by *genai.Client.
type Editor interface {
	EditImage(ctx context.Context, req genai.EditRequest) (*genai.EditedImage, error)
}

// Input is one transform request: the source image bytes, its declared MIME
// type, and the operator's editing prompt (optional).
type Input struct {
	ImageData []byte
	MIMEType  string
	Prompt    string
	RequestID string
}

// Result is the outcome of a successful transform.
type Result struct {
	Path          string
	Filename      string
	AppliedPrompt string
}

// Service takes one image plus one prompt, produces one edited image,
// persists it under the public directory, and returns its address. It holds
// no per-request state; concurrent requests are independent.
type Service struct {
	editor Editor
	store  *storage.FileStore
	logger infra.Logger
}

// NewService wires the transform pipeline. A nil editor marks the service as
// unconfigured; every request then fails with a configuration error.
func NewService(editor Editor, store *storage.FileStore, logger infra.Logger) *Service {
	return &Service{editor: editor, store: store, logger: logger}
}

// Configured reports whether a model credential was provided at startup.
func (s *Service) Configured() bool {
	return s.editor != nil
}

// Transform validates the input, invokes the model once, and persists the
// returned image. Validation failures are reported before any external call.
func (s *Service) Transform(ctx context.Context, in Input) (*Result, error) {
	if s.editor == nil {
		return nil, &Error{
			Kind:    KindConfiguration,
			Code:    "missing_api_key",
			Message: "image editing credential is not configured on the server",
		}
	}
	if len(in.ImageData) == 0 {
		return nil, &Error{
			Kind:    KindValidation,
			Code:    "missing_image",
			Message: "no image was provided",
		}
	}
	if !AllowedMIME(in.MIMEType) {
		return nil, &Error{
			Kind:    KindValidation,
			Code:    "unsupported_type",
			Message: fmt.Sprintf("file type %q is not allowed; allowed types: %s", in.MIMEType, strings.Join(AllowedMIMEList(), ", ")),
		}
	}
	if len(in.ImageData) > MaxImageBytes {
		return nil, &Error{
			Kind:    KindValidation,
			Code:    "file_too_large",
			Message: fmt.Sprintf("file exceeds the maximum size of %dMB", MaxImageBytes/1024/1024),
		}
	}

	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}

	edited, err := s.editor.EditImage(ctx, genai.EditRequest{
		Prompt:    prompt,
		ImageData: in.ImageData,
		MIMEType:  in.MIMEType,
		RequestID: in.RequestID,
	})
	if err != nil {
		if upstream := classifyUpstream(err); upstream != nil {
			return nil, upstream
		}
		return nil, fmt.Errorf("edit image: %w", err)
	}

	filename := randomFilename(edited)
	key, err := s.store.Write(ctx, productsPrefix+"/"+filename, edited.Data)
	if err != nil {
		return nil, &Error{
			Kind:    KindPersistence,
			Code:    "store_failed",
			Message: "failed to store the transformed image",
			Err:     err,
		}
	}

	s.logger.Info().
		Str("request_id", in.RequestID).
		Str("filename", filename).
		Str("mime", edited.MIMEType).
		Int("bytes", len(edited.Data)).
		Msg("transform: image stored")

	return &Result{
		Path:          s.store.PublicPath(key),
		Filename:      filename,
		AppliedPrompt: prompt,
	}, nil
}

// classifyUpstream maps the three distinct extraction failures to upstream
// errors with stable codes. Anything else (transport failure, API error) is
// left for the caller to treat as unexpected.
func classifyUpstream(err error) *Error {
	switch {
	case errors.Is(err, genai.ErrNoCandidates):
		return &Error{Kind: KindUpstream, Code: "model_no_candidates", Message: "the model did not produce a response", Err: err}
	case errors.Is(err, genai.ErrNoParts):
		return &Error{Kind: KindUpstream, Code: "model_no_parts", Message: "the model response carried no content", Err: err}
	case errors.Is(err, genai.ErrNoImagePart):
		return &Error{Kind: KindUpstream, Code: "model_no_image", Message: "the model did not return a transformed image", Err: err}
	}
	return nil
}

// randomFilename builds a collision-resistant name: 16 random bytes in hex
// plus an extension derived from the actual returned bytes. The declared
// inline MIME type is only a fallback when sniffing is inconclusive.
func randomFilename(edited *genai.EditedImage) string {
	return RandomHex(16) + imageExtension(edited)
}

func imageExtension(edited *genai.EditedImage) string {
	sniffed := http.DetectContentType(edited.Data)
	if ext, ok := ExtensionFor(sniffed); ok {
		return ext
	}
	if ext, ok := ExtensionFor(edited.MIMEType); ok {
		return ext
	}
	return ".png"
}

// RandomHex returns n random bytes hex-encoded, for stored filenames.
func RandomHex(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// ExtensionFor maps an allow-listed image MIME type to a file extension.
func ExtensionFor(mimeType string) (string, bool) {
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/png":
		return ".png", true
	case "image/jpeg", "image/jpg":
		return ".jpg", true
	case "image/webp":
		return ".webp", true
	case "image/gif":
		return ".gif", true
	}
	return "", false
}
