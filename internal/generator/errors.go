package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is wrapped by ReadError when an input file has no content.
	ErrEmptyInput = errors.New("input is empty")
	// ErrNoTemplate is wrapped by ReadError when neither a target's template
	// nor its previous output exists.
	ErrNoTemplate = errors.New("no template or existing shader found")
	// ErrNoPropertiesBlock is wrapped by ExtractionError in strict mode when
	// the source has no balanced Properties block.
	ErrNoPropertiesBlock = errors.New("no balanced Properties block")
	// ErrEmptyPropertiesBlock is wrapped by ExtractionError when the common
	// properties block has no content.
	ErrEmptyPropertiesBlock = errors.New("properties block is empty")
)

// ReadError reports an input that could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ExtractionError reports a property block that could not be extracted.
type ExtractionError struct {
	Path       string // empty when the text did not come from a file
	Descriptor string // "common" or "tessellation"
	Err        error
}

func (e *ExtractionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("could not extract %s properties: %v", e.Descriptor, e.Err)
	}
	return fmt.Sprintf("could not extract %s properties from %s: %v", e.Descriptor, e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// WriteError reports an output that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
