package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnknownReportKind = errors.New("unknown report kind")
	ErrInvalidModel      = errors.New("invalid report model")
	ErrRendererFailure   = errors.New("renderer failure")
	ErrQueueUnavailable  = errors.New("job queue unavailable")
)
