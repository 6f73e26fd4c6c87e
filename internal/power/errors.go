package power

import "fmt"

// ModeReadError reports an output whose current mode could not be read.
type ModeReadError struct {
	ID  string
	Err error
}

// Error implements error.
func (e *ModeReadError) Error() string {
	return fmt.Sprintf("reading mode of %s: %v", e.ID, e.Err)
}

// Unwrap returns the underlying OS error.
func (e *ModeReadError) Unwrap() error { return e.Err }

// ReconfigError reports an OS rejection of a disable or reset request.
// ID is empty for the reset of all displays.
type ReconfigError struct {
	ID  string
	Err error
}

// Error implements error.
func (e *ReconfigError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("resetting all displays: %v", e.Err)
	}
	return fmt.Sprintf("disabling %s: %v", e.ID, e.Err)
}

// Unwrap returns the underlying OS error.
func (e *ReconfigError) Unwrap() error { return e.Err }

// PersistError reports a failed state file write. In-memory state stays authoritative.
type PersistError struct {
	Path string
	Err  error
}

// Error implements error.
func (e *PersistError) Error() string {
	return fmt.Sprintf("saving state to %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *PersistError) Unwrap() error { return e.Err }
