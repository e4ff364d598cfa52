package service

import "errors"

var (
	ErrStoreNil    = errors.New("task store is nil")
	ErrEmptyPrompt = errors.New("prompt is required")
)
