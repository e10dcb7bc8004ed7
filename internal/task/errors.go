package task

import "errors"

var (
	// ErrInvalidDocument marks uploads that cannot be parsed into paragraphs.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrAlreadyRunning rejects a second analysis on a document whose
	// previous task has not reached a terminal state.
	ErrAlreadyRunning = errors.New("analysis already running for document")

	// ErrNotReady rejects result retrieval before the task terminates.
	ErrNotReady = errors.New("task result not ready")

	// ErrAnalysisFailed wraps the failure of a task that ended in error.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrNotFound marks unknown document or task ids.
	ErrNotFound = errors.New("not found")
)
