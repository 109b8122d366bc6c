package entity

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnsupportedCriterion = errors.New("unsupported criterion")
	ErrEmptyResponse        = errors.New("empty llm response")
	ErrMalformedResponse    = errors.New("malformed llm response")
	ErrAuthentication       = errors.New("llm provider authentication failed")
	ErrRateLimited          = errors.New("llm provider rate limit exceeded")
	ErrUnsupportedProvider  = errors.New("unsupported llm provider")
	ErrMissingAPIKey        = errors.New("missing api key")
	ErrMissingVariable      = errors.New("required variable not found")
)
