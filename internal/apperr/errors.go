// Package apperr holds the sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrNoElement     = errors.New("no matching element")
	ErrExpectation   = errors.New("expectation failed")
	ErrInvalidScript = errors.New("invalid script")
	ErrDeleteFailed  = errors.New("delete failed")
)
