package service

import "errors"

// Error classes recovered at the API boundary. Specific failures wrap one of
// these with fmt.Errorf("%w: ...") and handlers match with errors.Is.
var (
	// ErrValidation covers malformed caller input: wrong content type,
	// oversized body, bad filename, empty question.
	ErrValidation = errors.New("invalid request")

	// ErrNotFound is returned when no document has been uploaded yet.
	ErrNotFound = errors.New("no document found")

	// ErrEmptyContent is returned when the stored document has no usable text.
	// Ingestion should make this impossible, but the store is the source of
	// truth at answer time, so it is re-checked.
	ErrEmptyContent = errors.New("document contains no text content")

	// ErrExtraction is returned when the PDF text extractor fails or yields
	// only whitespace.
	ErrExtraction = errors.New("failed to extract text from PDF")

	// ErrStorage covers filesystem and database write failures, including the
	// filename uniqueness backstop firing under a concurrent-upload race.
	ErrStorage = errors.New("storage failure")

	// ErrEngine covers failures of the external retrieval/LLM collaborator.
	ErrEngine = errors.New("question answering engine failure")
)
