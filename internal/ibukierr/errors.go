// Package ibukierr holds the error taxonomy shared across the filter chain,
// the filtered source, the player and the REST surface. Every error is an
// *Error carrying a Kind, so callers classify a failure with Is (or
// errors.As to *Error) without parsing message strings.
package ibukierr

import "fmt"

// Kind classifies an error for REST status mapping and event emission.
type Kind string

const (
	KindInvalidParameter   Kind = "invalid_parameter"
	KindBufferSizeMismatch Kind = "buffer_size_mismatch"
	KindNoSupportedTrack   Kind = "no_supported_track"
	KindProbeFailed        Kind = "probe_failed"
	KindDecoderInit        Kind = "decoder_init"
	KindFormatReadError    Kind = "format_read_error"
	KindDecodeError        Kind = "decode_error"
	KindNotSeekable        Kind = "not_seekable"
	KindUnsupported        Kind = "unsupported"
	KindMissingDriver      Kind = "missing_driver"
	KindMissingConnection  Kind = "missing_connection"
	KindResolverError      Kind = "resolver_error"
	KindUnknownVersion     Kind = "unknown_version"
	KindMalformed          Kind = "malformed"
	KindUnauthorized       Kind = "unauthorized"
	KindAudioStreamFail    Kind = "audio_stream_fail"
)

// Error is the concrete error type for every sentinel in the taxonomy.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == kind {
				return true
			}
			err = e.Cause
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Fatal reports whether an error in this kind should end the current
// track with a TrackException (fatal) or be swallowed as transient (§7).
func (k Kind) Fatal() bool {
	switch k {
	case KindNoSupportedTrack, KindProbeFailed, KindDecoderInit, KindResolverError, KindFormatReadError, KindAudioStreamFail:
		return true
	default:
		return false
	}
}

// HTTPStatus maps a Kind to the REST status code §7 prescribes.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidParameter:
		return 400
	case KindUnauthorized:
		return 401
	case KindMissingDriver, KindMissingConnection:
		return 400
	case KindUnknownVersion, KindMalformed:
		return 415
	case KindNoSupportedTrack, KindProbeFailed, KindDecoderInit, KindAudioStreamFail:
		return 422
	case KindResolverError:
		return 502
	default:
		return 500
	}
}
