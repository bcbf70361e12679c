package stock

import (
	"errors"
	"fmt"
)

// ErrorKind classifies row failures so callers can tell a bad submission
// from a backend fault from a data-integrity violation.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindResolution   ErrorKind = "resolution"
	KindProvisioning ErrorKind = "provisioning"
	KindMerge        ErrorKind = "merge"
	KindIntegrity    ErrorKind = "integrity"
)

// ErrVariantConflict means the store returned more than one variant for a
// single option-set. The uniqueness invariant has been violated; the row
// must not proceed on a guess.
var ErrVariantConflict = errors.New("option-set matches more than one variant")

// ErrVariantExists is returned by the repository when the variant insert
// hits the (user, product, options hash) uniqueness backstop. The caller
// re-runs the match and adopts the winner.
var ErrVariantExists = errors.New("variant already exists for option-set")

type RowError struct {
	Kind ErrorKind
	Row  int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s error: %v", e.Row, e.Kind, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the error indicates corrupted data rather than a
// bad request or a transient backend failure.
func (e *RowError) Fatal() bool {
	return e.Kind == KindIntegrity
}

func rowErr(kind ErrorKind, row int, err error) *RowError {
	return &RowError{Kind: kind, Row: row, Err: err}
}

func rowErrf(kind ErrorKind, row int, format string, args ...interface{}) *RowError {
	return &RowError{Kind: kind, Row: row, Err: fmt.Errorf(format, args...)}
}

// OrphanVariantWarning is raised when the compensating delete after a
// failed option-link step itself failed: the variant row persists with no
// links and needs manual cleanup. It is reported separately from the row
// error that triggered the compensation.
type OrphanVariantWarning struct {
	VariantID int64
	Cause     error
}

func (w *OrphanVariantWarning) Error() string {
	return fmt.Sprintf("variant %d left unlinked, manual cleanup required: %v", w.VariantID, w.Cause)
}
