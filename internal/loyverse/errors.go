package loyverse

import (
	"errors"
	"fmt"
)

var (
	ErrRemoteService  = errors.New("remote service error")
	ErrPaginationLoop = errors.New("pagination loop")
)

// RemoteServiceError is returned for any non-2xx response.
type RemoteServiceError struct {
	Endpoint   string
	StatusCode int
	// Message carries the API's error details when the body had any.
	Message string
}

func (e *RemoteServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("loyverse %s: http %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("loyverse %s: http %d", e.Endpoint, e.StatusCode)
}

func (e *RemoteServiceError) Is(target error) bool {
	return target == ErrRemoteService
}

// PaginationLoopError stops a cursor chain that never terminates.
type PaginationLoopError struct {
	Endpoint string
	Cursor   string
	Pages    int
	Reason   string
}

func (e *PaginationLoopError) Error() string {
	return fmt.Sprintf("loyverse %s: pagination stopped after %d pages: %s (cursor %q)",
		e.Endpoint, e.Pages, e.Reason, e.Cursor)
}

func (e *PaginationLoopError) Is(target error) bool {
	return target == ErrPaginationLoop
}
