package probcast

import "fmt"

// Error is a wrapper for specific types of errors for which there is no additional information
// necessary. These errors are defined as global variables.
type Error struct{ string }

func (err Error) Error() string {
	return err.string
}

// These are the global errors that may be returned or panicked.
var (
	ErrNoForward  = Error{"No cached forward pass; call Forward first"}
	ErrEmptyBatch = Error{"Batch has no rows"}
)

// NilArgError documents errors resulting from certain arguments provided to a function being nil.
type NilArgError struct{ string }

func (err NilArgError) Error() string {
	return err.string + " is nil"
}

// SizeMismatchError documents errors resulting from an input dimension not lining up with the
// network's configuration. Quantity names what was measured.
type SizeMismatchError struct {
	Quantity  string
	Got, Want int
}

func (err SizeMismatchError) Error() string {
	return fmt.Sprintf("Wrong %s: got %d, expected %d", err.Quantity, err.Got, err.Want)
}
