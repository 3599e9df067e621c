package driven

import "context"

// ContentReader provides read access to document bodies, used for
// snippet extraction at query time and for full vault rebuilds.
type ContentReader interface {
	// ReadDocument returns the current content of a vault document.
	ReadDocument(ctx context.Context, path string) (string, error)
}
