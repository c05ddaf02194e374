package pathe

import (
	"errors"
	"fmt"
)

// ParseError means the markup was present but in a shape we don't
// recognize. It is a data-quality fault: the caller skips the offending
// item with a diagnostic instead of aborting the crawl.
type ParseError struct {
	What  string // which element was being parsed
	Input string // the offending text, trimmed for logging
}

func (e *ParseError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("pathe: unrecognized %s", e.What)
	}
	return fmt.Sprintf("pathe: unrecognized %s: %q", e.What, e.Input)
}

func parseErrorf(what, input string) error {
	return &ParseError{What: what, Input: input}
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
