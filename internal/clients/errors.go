package clients

import "fmt"

// UpstreamRejectedError means the upstream answered with a non-2xx status. The
// upstream body is dropped.
type UpstreamRejectedError struct {
	StatusCode int
}

func (e *UpstreamRejectedError) Error() string {
	return fmt.Sprintf("upstream responded with status %d", e.StatusCode)
}

// TransportError covers everything between "could not build the request" and
// "got a 2xx whose body is not JSON": dial failures, timeouts, short reads.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
