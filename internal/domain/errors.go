package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrTopicRequired   = errors.New("topic id is required")
	ErrInvalidLanguage = errors.New("invalid language")
	ErrProviderFailure = errors.New("provider failure")
	ErrEmptyPayload    = errors.New("empty payload")
)
