package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrIntakeIncomplete is returned when tree navigation is attempted before the intake finished.
var ErrIntakeIncomplete = errors.New("intake not completed")

// ErrTreeLoad is returned (wrapped) by loaders when the content tree cannot be produced.
var ErrTreeLoad = errors.New("failed to load content tree")

// ErrNilState is returned when an operation receives no state.
var ErrNilState = errors.New("state is nil")
