package domain

import "errors"

var (
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
	ErrBadRequest             = errors.New("bad request")
	ErrAlreadyExists          = errors.New("already exists")
	ErrNotFound               = errors.New("not found")
)
