package dispatch

import "errors"

var (
	// ErrQueueClosed is returned by Enqueue after Stop has been called.
	ErrQueueClosed = errors.New("dispatch queue is closed")

	// ErrSendFailed wraps provider errors reported to the drop handler.
	ErrSendFailed = errors.New("notification send failed")
)
