package util

import (
	"context"
	"errors"
	"net"
)

// IsTimeout reports whether err stems from a deadline or network
// timeout on an upstream call. The orchestrator performs no internal
// retry; callers use this to surface a retryable failure.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
