package models

import "errors"

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidStatus = errors.New("invalid task status")
	ErrEmptyTitle    = errors.New("task title is required")
)
