package entity

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateLead = errors.New("lead already exists")
)
