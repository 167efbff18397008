package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// APIClient talks to the admin API over HTTP and implements ProductAPI.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient constructs a client for the given API base URL. A nil HTTP
// client gets a default with a timeout generous enough for a model call.
func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 180 * time.Second}
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type transformResponse struct {
	Success       bool   `json:"success"`
	Path          string `json:"path"`
	Filename      string `json:"filename"`
	AppliedPrompt string `json:"appliedPrompt"`
}

type uploadResponse struct {
	Path string `json:"path"`
}

type apiErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// TransformImage posts the image and prompt as multipart form data and
// returns the stored result.
func (c *APIClient) TransformImage(ctx context.Context, image SelectedImage, prompt string) (*TransformResult, error) {
	body, contentType, err := encodeImageForm(image, map[string]string{"prompt": prompt})
	if err != nil {
		return nil, err
	}

	var out transformResponse
	if err := c.postForm(ctx, "/v1/admin/products/transform-image", contentType, body, &out); err != nil {
		return nil, err
	}
	return &TransformResult{
		Path:     out.Path,
		Filename: out.Filename,
		Prompt:   out.AppliedPrompt,
	}, nil
}

// UploadImage posts the image without any transformation and returns the
// stored path.
func (c *APIClient) UploadImage(ctx context.Context, image SelectedImage) (string, error) {
	body, contentType, err := encodeImageForm(image, nil)
	if err != nil {
		return "", err
	}

	var out uploadResponse
	if err := c.postForm(ctx, "/v1/admin/products/upload-image", contentType, body, &out); err != nil {
		return "", err
	}
	if out.Path == "" {
		return "", fmt.Errorf("upload succeeded but no path was returned")
	}
	return out.Path, nil
}

// CreateProduct posts the final product record.
func (c *APIClient) CreateProduct(ctx context.Context, product Product) error {
	payload := map[string]any{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"stock":       product.Stock,
		"isDigital":   product.IsDigital,
	}
	if product.Image != "" {
		payload["image"] = product.Image
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/admin/products", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	return nil
}

// encodeImageForm builds a multipart body with the image under the "image"
// field, carrying the declared MIME type, plus any extra text fields.
func encodeImageForm(image SelectedImage, fields map[string]string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, image.Name))
	header.Set("Content-Type", image.MIME)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(image.Data); err != nil {
		return nil, "", fmt.Errorf("write image part: %w", err)
	}

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

func (c *APIClient) postForm(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError turns a failure body into the combined error+details string
// shown to the operator verbatim.
func decodeAPIError(resp *http.Response) error {
	var apiErr apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
		if apiErr.Details != "" {
			return fmt.Errorf("%s: %s", apiErr.Error, apiErr.Details)
		}
		return fmt.Errorf("%s", apiErr.Error)
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}
