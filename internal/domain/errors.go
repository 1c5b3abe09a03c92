package domain

import "errors"

var (
	// ErrStoreUnavailable signals that the conversation store could not
	// complete an operation. The triggering event is dropped and logged.
	ErrStoreUnavailable = errors.New("conversation store unavailable")

	// ErrTokenNotFound signals a missing access token for an account.
	ErrTokenNotFound = errors.New("no access token for account")

	// ErrEmptyGeneration signals that the generative client returned no text.
	ErrEmptyGeneration = errors.New("empty generation")
)
