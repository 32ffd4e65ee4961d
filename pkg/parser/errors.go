package parser

import (
	"fmt"
	"time"
)

// ParseError is returned when a receipt row cannot be turned into records.
// It identifies the row and the timestamp of the message it came from.
type ParseError struct {
	Row  string
	Time time.Time
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to process item %s from %s: %v", e.Row, e.Time.Format(time.DateTime), e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
