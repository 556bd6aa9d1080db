package rawfile

import "fmt"

// FormatError reports a malformed preamble, header or body. It is
// unrecoverable: no partial document is returned except in header-only mode.
type FormatError struct {
	Path   string
	Offset int64
	Msg    string
}

func (e *FormatError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: invalid raw file at byte %d: %s", e.Path, e.Offset, e.Msg)
	}
	return fmt.Sprintf("invalid raw file at byte %d: %s", e.Offset, e.Msg)
}

func formatErrf(off int64, format string, args ...interface{}) *FormatError {
	return &FormatError{Offset: off, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a request for a variable the document does not hold.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("variable %q not found", e.Name)
}

// StepMismatchError reports that the number of step intervals derived from
// the axis disagrees with the number of step records in the companion log.
type StepMismatchError struct {
	Intervals int // intervals found by scanning the axis
	Records   int // records parsed from the companion log
}

func (e *StepMismatchError) Error() string {
	return fmt.Sprintf("axis yields %d step intervals but companion log declares %d runs",
		e.Intervals, e.Records)
}
