// Package tideerr defines the failures a tide prediction can end in. Every
// error is a pointer type; use errors.As to tell them apart.
package tideerr

import "fmt"

// FormatError reports a malformed or truncated record in one of the
// reference datasets.
type FormatError struct {
	Dataset string
	Line    int // 1-based, 0 when unknown
	Msg     string
	Err     error
}

func (e *FormatError) Error() string {
	s := e.Dataset
	if e.Line > 0 {
		s = fmt.Sprintf("%s:%d", e.Dataset, e.Line)
	}
	s = fmt.Sprintf("%s: %s", s, e.Msg)
	if e.Err != nil {
		s = fmt.Sprintf("%s: %v", s, e.Err)
	}
	return s
}

func (e *FormatError) Unwrap() error { return e.Err }

// LookupError reports a request for data the datasets do not hold, such as a
// year before the first tabulated one or an unknown secondary station.
type LookupError struct {
	Dataset string
	Key     string
	Value   int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: no %s %d", e.Dataset, e.Key, e.Value)
}

// InvalidInputError rejects a request before any file is opened.
type InvalidInputError struct {
	Field string
	Msg   string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// DegenerateExtremaError is returned when the high and low around a time are
// indistinguishable, which would divide by zero in the secondary transform.
type DegenerateExtremaError struct {
	Time   float64 // hours since the start of the loaded year
	Height float64
}

func (e *DegenerateExtremaError) Error() string {
	return fmt.Sprintf("degenerate extrema near hour %.2f: high and low both %.3f", e.Time, e.Height)
}
