package domain

import "errors"

var (
	// ErrSubmissionNotFound is returned when a submission id does not resolve.
	ErrSubmissionNotFound = errors.New("submission not found")
)
