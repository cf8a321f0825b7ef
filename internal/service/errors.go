package service

import (
	"errors"

	"biomeai-be/pkg/guard"
)

var (
	// ErrPersistence wraps datastore failures surfaced to the user as an apology.
	ErrPersistence = errors.New("persistence failed")
	// ErrUploadInProgress is returned when the user already has an ingestion running.
	ErrUploadInProgress = guard.ErrConcurrencyRejected
	// ErrUnsupportedFile is returned for attachments no decoder handles.
	ErrUnsupportedFile = errors.New("unsupported file type")
)
