package content

import "errors"

// Sentinel errors returned by tree resolution and document mutations.
// NotFound and Conflict are normal outcomes surfaced to the caller;
// Validation rejects a whole mutation with no write. Anything else that
// comes out of the store is a storage error and is wrapped with context.
var (
	ErrNotFound   = errors.New("content: not found")
	ErrConflict   = errors.New("content: name already exists")
	ErrValidation = errors.New("content: invalid payload")
)
