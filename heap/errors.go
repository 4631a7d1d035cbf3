package heap

import "errors"

var (
	// ErrBadConfig indicates an invalid Config was passed to New.
	ErrBadConfig = errors.New("heap: bad configuration")

	// ErrHeapNotEmpty indicates Close was called while blocks are still live.
	ErrHeapNotEmpty = errors.New("heap: live blocks remain")

	// ErrClosed indicates use of a heap after Close.
	ErrClosed = errors.New("heap: closed")
)

// ExitOutOfMemory is the process exit code used when an allocation fails
// after the full reclamation ladder and the caller did not opt into
// null-on-error behavior.
const ExitOutOfMemory = 10
