package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Controller-local failures. These never reach the network; they are surfaced
// to the operator in the same shape as server errors.
var (
	ErrNoImageSelected = errors.New("no image selected to transform")
	ErrEmptyPrompt     = errors.New("edit prompt is empty")
)

// State tracks the optional enhancement step for one product form session.
type State int

const (
	// StateIdle means no file has been selected yet.
	StateIdle State = iota
	// StateReady means a file is selected and a transform may be requested.
	StateReady
	// StateTransforming means one transform call is in flight.
	StateTransforming
	// StateTransformedReady means a transformed image is live and will take
	// precedence at submit time.
	StateTransformedReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateTransforming:
		return "transforming"
	case StateTransformedReady:
		return "transformed_ready"
	}
	return "unknown"
}

// SelectedImage is the locally chosen source file: its bytes, declared MIME
// type and name. Replaced wholesale when the operator picks a new file.
type SelectedImage struct {
	Name string
	Data []byte
	MIME string
}

// TransformResult is the outcome of one successful transform: the
// storage-relative path of the generated image, its filename, and the prompt
// that produced it. At most one is live at a time.
type TransformResult struct {
	Path     string
	Filename string
	Prompt   string
}

// Product is the record handed to product creation. Image holds the resolved
// submission path, or is empty when the product has no image.
type Product struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	IsDigital   bool
	Image       string
}

// ProductAPI is the server surface the controller drives: the transform
// endpoint, the plain upload fallback, and product creation.
type ProductAPI interface {
	TransformImage(ctx context.Context, image SelectedImage, prompt string) (*TransformResult, error)
	UploadImage(ctx context.Context, image SelectedImage) (string, error)
	CreateProduct(ctx context.Context, product Product) error
}

// Controller owns the selected file, the active edit prompt, and the
// transform state machine. It is the single source of truth for which image
// variant is attached to the final product record.
//
// Only one transform may be in flight at a time; selecting a new file
// invalidates the result a pending transform would produce, without aborting
// the outstanding request.
type Controller struct {
	api ProductAPI

	mu         sync.Mutex
	state      State
	image      *SelectedImage
	generation uint64
	prompt     string
	result     *TransformResult
	lastErr    string
}

// NewController starts a session in the Idle state with the default prompt
// preloaded.
func NewController(api ProductAPI) *Controller {
	return &Controller{
		api:    api,
		state:  StateIdle,
		prompt: DefaultPrompt,
	}
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// TransformError returns the last surfaced transform error, or "".
func (c *Controller) TransformError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Prompt returns the active edit prompt.
func (c *Controller) Prompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompt
}

// Result returns a copy of the live transform result, or nil.
func (c *Controller) Result() *TransformResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil
	}
	res := *c.result
	return &res
}

// SelectImage records a new source file and synchronously invalidates any
// derived state: the live transform result and any surfaced error are
// discarded before the method returns, regardless of the current state. A
// transform still in flight for the previous file keeps running, but its
// eventual result is dropped because the generation no longer matches.
func (c *Controller) SelectImage(image SelectedImage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img := image
	c.image = &img
	c.generation++
	c.result = nil
	c.lastErr = ""
	c.state = StateReady
}

// SetPrompt replaces the active edit prompt. Presets are shortcuts, not an
// enforced vocabulary; arbitrary text is accepted. Emptiness is rejected at
// invocation time, not here.
func (c *Controller) SetPrompt(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompt = text
}

// CanTransform reports whether RequestTransform would currently be accepted.
// The UI uses this to disable the trigger; the controller guards regardless.
func (c *Controller) CanTransform() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != StateTransforming && c.image != nil && strings.TrimSpace(c.prompt) != ""
}

// RequestTransform issues the transform call for the selected image and the
// active prompt. A call while a transform is already in flight is a no-op.
// The selected image is re-checked here because the file reference can in
// principle drift from what the form believes is selected.
func (c *Controller) RequestTransform(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateTransforming {
		c.mu.Unlock()
		return nil
	}
	if c.image == nil {
		c.lastErr = ErrNoImageSelected.Error()
		c.mu.Unlock()
		return ErrNoImageSelected
	}
	prompt := strings.TrimSpace(c.prompt)
	if prompt == "" {
		c.lastErr = ErrEmptyPrompt.Error()
		c.mu.Unlock()
		return ErrEmptyPrompt
	}

	image := *c.image
	generation := c.generation
	c.state = StateTransforming
	c.lastErr = ""
	c.mu.Unlock()

	result, err := c.api.TransformImage(ctx, image, prompt)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation {
		// The operator picked a new file while this call was in flight.
		// SelectImage already reset the state; the stale outcome is dropped.
		return nil
	}
	if err != nil {
		// A failed transform leaves the selected image and any prior
		// result untouched.
		if c.result != nil {
			c.state = StateTransformedReady
		} else {
			c.state = StateReady
		}
		c.lastErr = err.Error()
		return err
	}
	c.result = result
	c.state = StateTransformedReady
	return nil
}

// DiscardTransform drops the live transform result and returns to Ready,
// keeping the selected image.
func (c *Controller) DiscardTransform() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return
	}
	c.result = nil
	c.state = StateReady
}

// ResolveSubmissionImage computes the image path attached to the product:
// the live transform result wins; otherwise the selected image is uploaded
// through the plain collaborator; otherwise the product has no image.
// Called once per submission; it never re-runs a transform.
func (c *Controller) ResolveSubmissionImage(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.result != nil {
		path := c.result.Path
		c.mu.Unlock()
		return path, nil
	}
	if c.image == nil {
		c.mu.Unlock()
		return "", nil
	}
	image := *c.image
	c.mu.Unlock()

	return c.api.UploadImage(ctx, image)
}

// SubmitProduct resolves the submission image once and creates the product.
// Digital products always carry zero stock. A failed upload or creation
// aborts the submission and leaves the session state untouched.
func (c *Controller) SubmitProduct(ctx context.Context, product Product) error {
	path, err := c.ResolveSubmissionImage(ctx)
	if err != nil {
		return err
	}
	product.Image = path
	if product.IsDigital {
		product.Stock = 0
	}
	return c.api.CreateProduct(ctx, product)
}
