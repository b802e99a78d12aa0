package boundprovider

import (
	"errors"
	"fmt"

	"github.com/onesdk/go-sdk/resilience"
	"github.com/onesdk/go-sdk/transport"
)

// HTTPStatusError wraps a completed HTTP exchange whose status code a step
// did not expect. transport.Fetch does not treat non-2xx responses as
// errors — JSONMap does, so the failover adapter's Classify func has
// something to feed the router.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
}

// Classify extends transport.Classify with HTTP status awareness: an
// HTTPStatusError becomes an http/<code> ExecutionFailure; anything else
// (DNS, timeout, connection reset) is delegated to transport.Classify.
func Classify(err error) resilience.ExecutionFailure {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return resilience.NewHTTPFailure(statusErr.StatusCode)
	}
	return transport.Classify(err)
}
