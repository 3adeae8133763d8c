package service

import "errors"

var (
	ErrEmptyInput      = errors.New("input must not be empty")
	ErrSessionNotFound = errors.New("chat session not found")
)
