package record

import "fmt"

// InvalidKeyError reports a semantic key that cannot be turned into a
// filesystem path: empty after normalization, too long, or containing a
// path separator or parent reference. Nothing is written when it occurs.
type InvalidKeyError struct {
	Key string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid record key: %q", e.Key)
}

// ViolationError reports a built document that failed structural validation,
// or a raw-markup field that could not be parsed. Nothing is written when it
// occurs. Detail carries the underlying parser/validator complaint.
type ViolationError struct {
	Detail string
}

func (e *ViolationError) Error() string {
	return "record failed validation: " + e.Detail
}

// AlreadyExistsError reports that a record's target path is already occupied.
// The check happens before any write and before any git command runs.
type AlreadyExistsError struct {
	Path string
}

func (e *AlreadyExistsError) Error() string {
	return e.Path + " already exists"
}

// TooLargeError reports a submission whose combined field values exceed the
// accepted size.
type TooLargeError struct {
	Size  int
	Limit int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("submission too large: %d bytes (limit %d)", e.Size, e.Limit)
}
