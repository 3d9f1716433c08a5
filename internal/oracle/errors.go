package oracle

import "fmt"

// UnavailableError marks a transient failure reaching or parsing the weather
// provider. It is never a verification verdict: callers (the scheduler, the
// signing collaborator) should retry with backoff rather than treat it as
// "verified false".
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("weather provider unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
