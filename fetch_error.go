package gts

import (
	"fmt"
)

type FetchErrorKind string

const (
	FetchErrorNetwork      FetchErrorKind = "network"
	FetchErrorStatus       FetchErrorKind = "status"
	FetchErrorParse        FetchErrorKind = "parse"
	FetchErrorMissingField FetchErrorKind = "missing_field"
)

// FetchError is returned by the upstream clients so callers can tell a
// failed request from one that legitimately returned nothing
type FetchError struct {
	Kind FetchErrorKind
	Op   string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func newFetchError(kind FetchErrorKind, op string, err error) *FetchError {
	return &FetchError{
		Kind: kind,
		Op:   op,
		Err:  err,
	}
}
