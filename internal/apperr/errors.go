package apperr

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the document pipeline. Match with errors.Is.
var (
	ErrLoad       = errors.New("load error")
	ErrEmbedding  = errors.New("embedding error")
	ErrIndex      = errors.New("index error")
	ErrGeneration = errors.New("generation error")
	ErrRetrieval  = errors.New("retrieval error")
	ErrConfig     = errors.New("config error")
)

var kinds = []error{ErrLoad, ErrEmbedding, ErrIndex, ErrGeneration, ErrRetrieval, ErrConfig}

// Error carries the kind of failure, the operation that failed and the cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause so errors.Is matches either.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New wraps err as a failure of the given kind. If err already carries the
// same kind it is returned unchanged.
func New(kind error, op string, err error) error {
	if err != nil && errors.Is(err, kind) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a kinded error from a format string.
func Errorf(kind error, op string, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the first known kind found in err's chain, or nil.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
