package llm

import "errors"

var (
	// ErrUnsupportedAttachment is returned when a provider cannot accept the attachment media type.
	ErrUnsupportedAttachment = errors.New("unsupported attachment type")
	// ErrNoViableModel is returned when none of the candidate models answers the probe.
	ErrNoViableModel   = errors.New("no viable model")
	ErrUnknownProvider = errors.New("unknown llm provider")
	ErrEmptyResponse   = errors.New("empty response")
	// ErrStreamTruncated is returned when a stream ends before the provider's end marker.
	ErrStreamTruncated = errors.New("stream ended before completion")
)
