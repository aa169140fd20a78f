package panther

import "fmt"

// UnexpectedStatusError indicates the Panther API returned a status code
// outside the caller-declared expected set. This is a contract violation
// between client and API and always propagates; the client never swallows
// it.
type UnexpectedStatusError struct {
	Status int
	Body   []byte
}

func (e *UnexpectedStatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("unexpected status %d from Panther API", e.Status)
	}
	return fmt.Sprintf("unexpected status %d from Panther API: %s", e.Status, truncate(e.Body, 512))
}

// TransportError indicates a network-level failure (timeout, connection
// refused, DNS failure). The client performs no automatic retry.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("panther request failed: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
