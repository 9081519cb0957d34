package tracelog

import "errors"

var (
	// Contract violations: the caller broke the writer protocol. These
	// abort the operation; retrying without fixing the caller is wrong.
	ErrNotStarted      = errors.New("tracelog: session not started")
	ErrAllocPending    = errors.New("tracelog: previous alloc not committed")
	ErrNoAlloc         = errors.New("tracelog: commit without a pending alloc")
	ErrInvalidSize     = errors.New("tracelog: invalid message size")
	ErrMessageTooLarge = errors.New("tracelog: message exceeds page size")
	ErrInvalidDir      = errors.New("tracelog: empty staging directory")

	// ErrUnavailable means no staging page could be obtained. Logging is
	// degraded, not broken; the next Alloc re-attempts the fetch.
	ErrUnavailable = errors.New("tracelog: no page available")
)

var contractErrors = []error{
	ErrNotStarted,
	ErrAllocPending,
	ErrNoAlloc,
	ErrInvalidSize,
	ErrMessageTooLarge,
	ErrInvalidDir,
}

// IsContract reports whether err is a violation of the writer protocol
// rather than a recoverable resource failure.
func IsContract(err error) bool {
	for _, c := range contractErrors {
		if errors.Is(err, c) {
			return true
		}
	}
	return false
}
