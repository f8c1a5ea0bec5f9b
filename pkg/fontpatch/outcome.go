package fontpatch

import (
	"fmt"

	"github.com/pkg/errors"
)

type Status int

const (
	Success Status = iota
	AlreadyPatched
	NoDataFound
	NoOpApplied
	InputUnreadable
	OutputWriteFailed
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case AlreadyPatched:
		return "already-patched"
	case NoDataFound:
		return "no-data-found"
	case NoOpApplied:
		return "no-op-applied"
	case InputUnreadable:
		return "input-unreadable"
	case OutputWriteFailed:
		return "output-write-failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Outcome is the result of one Patch call.
type Outcome struct {
	Replacements int
	Skipped      int
	Status       Status
	Message      string
}

// Err returns nil on Success and an *Error carrying the status otherwise.
func (o Outcome) Err() error {
	if o.Status == Success {
		return nil
	}
	return &Error{Status: o.Status, Msg: o.Message}
}

// Error is a patch failure of a known kind.
type Error struct {
	Status Status
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Status, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Status, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusOf reports the Status carried by err.
// nil is Success; errors without a Status are reported as InputUnreadable.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Status
	}
	return InputUnreadable
}

func outcome(status Status, replaced, skipped int) Outcome {
	o := Outcome{Replacements: replaced, Skipped: skipped, Status: status}
	switch status {
	case Success:
		if skipped > 0 {
			o.Message = fmt.Sprintf("patched %d reference sites, %d left unchanged (new font name too long)", replaced, skipped)
		} else {
			o.Message = fmt.Sprintf("patched %d reference sites", replaced)
		}
	case AlreadyPatched:
		o.Message = "file appears to be patched already (found " + CanonicalName + " or the new font name); use an unmodified original"
	case NoDataFound:
		o.Message = "no font reference data found; make sure this is the original resource package"
	case NoOpApplied:
		o.Message = fmt.Sprintf("reference sites found but none rewritten, %d would have grown the file", skipped)
	}
	return o
}
