// Package apperr holds the error taxonomy surfaced at operation
// boundaries. Validation failures are local and never retried; upload and
// persistence failures abort the whole operation; fetch failures are
// retryable by the caller.
package apperr

import "fmt"

type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func Validation(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s failed: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

type FetchError struct {
	What string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.What, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
