package transform

import "fmt"

// Kind classifies a transform failure so the HTTP boundary can map it to a
// status class without inspecting error text.
type Kind int

const (
	// KindConfiguration means the service is missing its model credential.
	// Fatal to the request and not recoverable by the client.
	KindConfiguration Kind = iota
	// KindValidation means the submitted image is unusable; the operator
	// must correct the input.
	KindValidation
	// KindUpstream means the model call completed but the reply carried no
	// usable image. Transient; the operator may retry.
	KindUpstream
	// KindPersistence means the edited image could not be written to the
	// public directory.
	KindPersistence
)

// Error is a classified transform failure. Code is a stable machine string,
// Message a short human-readable summary, Err the underlying detail when one
// exists.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
