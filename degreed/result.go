package degreed

import "fmt"

// Result is a provider response, returned verbatim whatever its status.
type Result struct {
	StatusCode int
	Body       string
}

// OK reports whether the status code is 2xx.
func (r Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// StatusError reports a transmission the provider answered with a non-2xx status.
type StatusError struct {
	Method   string
	Kind     ResourceKind
	CourseID string
	Result   Result
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("degreed: %s %s for %s: status %d: %s", e.Method, e.Kind, e.CourseID, e.Result.StatusCode, e.Result.Body)
}
