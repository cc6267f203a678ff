// Package apperr defines the error kinds the crawler distinguishes between.
// Callers wrap one of the sentinels with %w and classify with errors.Is.
package apperr

import "errors"

var (
	// ErrConfiguration is fatal and reported before any request is issued.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransport covers network, DNS, TLS and timeout failures of a single request.
	ErrTransport = errors.New("transport error")
	// ErrUpstream covers non-2xx responses and provider statuses other than OK.
	ErrUpstream = errors.New("upstream error")
	// ErrPayloadShape is returned when a response lacks an expected field or has the wrong type.
	ErrPayloadShape = errors.New("payload shape error")
	// ErrPartialData is informational: the place exists but its popular times do not.
	ErrPartialData = errors.New("partial data")
)

// Fatal reports whether err must stop the whole pipeline.
func Fatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
