// Package errs holds the sentinel errors returned across treeblob packages.
//
// Callers match them with errors.Is; intermediate layers wrap them with
// context using fmt.Errorf("...: %w", err).
package errs

import "errors"

// Context and buffer errors.
var (
	// ErrInvalidContext reports a malformed buffer, a reference that points
	// outside the buffer, or use of a released context.
	ErrInvalidContext = errors.New("invalid context")
	// ErrEmptyBuffer reports a zero-length buffer.
	ErrEmptyBuffer = errors.New("buffer is empty")
	// ErrReadOnlyContext reports a mutation attempt on a buffer-backed context.
	ErrReadOnlyContext = errors.New("context is read-only")
	// ErrAlreadyInitialized reports a second root priming on the same context.
	ErrAlreadyInitialized = errors.New("context root already initialized")
	// ErrNotInitialized reports a write before the root container was primed.
	ErrNotInitialized = errors.New("context root not initialized")
	// ErrAllocationFailure reports that the buffer cannot grow any further.
	ErrAllocationFailure = errors.New("buffer allocation failure")
	// ErrInvalidOption reports an out-of-range configuration value.
	ErrInvalidOption = errors.New("invalid option")
)

// Value addressing errors.
var (
	// ErrTypeMismatch reports an accessor invoked against a value of another tag,
	// or a keyed operation on an array (and a positional one on an object).
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnsupportedType reports a value kind that cannot be represented.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrNotAContainer reports a container query against a non-container.
	ErrNotAContainer = errors.New("not a container")
	// ErrKeyNotFound reports a missing object key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrIndexOutOfRange reports an array index outside [0, length).
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidKey reports an empty object key.
	ErrInvalidKey = errors.New("invalid key")
)

// Envelope errors.
var (
	// ErrInvalidEnvelope reports a compressed envelope with a bad header.
	ErrInvalidEnvelope = errors.New("invalid compressed envelope")
	// ErrChecksumMismatch reports a decompressed payload whose hash differs
	// from the one recorded in the envelope.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)
