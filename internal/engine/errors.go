package engine

import "errors"

// Stream state errors.
var (
	ErrStreamClosed = errors.New("engine: stream closed")
	ErrRowsPending  = errors.New("engine: metadata requested before the last row")
)
