package services

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrAnalysisInProgress = errors.New("analysis already in progress for this photo")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnknownPersona     = errors.New("unknown persona")
	ErrNoImageLocation    = errors.New("photo has no resolvable image location")
	ErrAlreadyExists      = errors.New("already exists")
)
