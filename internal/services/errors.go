package services

import "errors"

var (
	ErrUnsupportedLanguage = errors.New("language not supported")
	ErrNotConfigured       = errors.New("translation API key not configured")
	ErrTranslationFailed   = errors.New("translation failed")
	ErrTranslationParse    = errors.New("failed to parse translation response")

	// ErrQueueUnavailable is returned by Enqueue when the job was not accepted.
	ErrQueueUnavailable = errors.New("job queue unavailable")
	ErrUnknownJob       = errors.New("unknown job type")
)
