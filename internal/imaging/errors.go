package imaging

import "fmt"

// InvalidInputError reports a malformed or unsupported scan payload. It is
// always surfaced to the caller with a specific reason and never retried.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid scan input: %s", e.Reason)
}

func invalidInputf(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}
