// Package transport implements the voice-transport driver the player
// attaches to (§4.6): a Pion WebRTC peer connection carrying Opus audio,
// grounded on the teacher's gRPC-signaled WebRTC streamer but driven here
// by filtered-source PCM instead of a live conversational agent.
package transport

import (
	"context"
	"io"
)

// Credentials carries whatever the caller's voice-transport endpoint needs
// to dial (§4.6 connect(credentials, config)). The core never validates
// their semantic correctness beyond "non-empty"; deeper validation is the
// transport's job at Dial time.
type Credentials struct {
	Endpoint  string
	Token     string
	SessionID string
}

// CloseReason is the transport-level reason a connection ended, mapped to
// the numeric WebSocketClosed codes in §6's close-code table.
type CloseReason string

const (
	CloseUnknownOp             CloseReason = "unknown_op"
	CloseInvalidPayload        CloseReason = "invalid_payload"
	CloseNotAuthenticated      CloseReason = "not_authenticated"
	CloseAuthFailed            CloseReason = "auth_failed"
	CloseAlreadyAuthenticated  CloseReason = "already_authenticated"
	CloseSessionInvalid        CloseReason = "session_invalid"
	CloseSessionTimeout        CloseReason = "session_timeout"
	CloseServerNotFound        CloseReason = "server_not_found"
	CloseDisconnected          CloseReason = "disconnected"
	CloseServerCrash           CloseReason = "server_crash"
	CloseUnknownEncryption     CloseReason = "unknown_encryption"
	CloseGraceful              CloseReason = "graceful"
)

// CloseCode maps a CloseReason to the numeric code §6 specifies.
func CloseCode(reason CloseReason) int {
	switch reason {
	case CloseUnknownOp:
		return 4001
	case CloseInvalidPayload:
		return 4003
	case CloseNotAuthenticated:
		return 4004
	case CloseAuthFailed:
		return 4005
	case CloseAlreadyAuthenticated:
		return 4006
	case CloseSessionInvalid:
		return 4009
	case CloseSessionTimeout:
		return 4011
	case CloseServerNotFound:
		return 4012
	case CloseDisconnected:
		return 4013
	case CloseServerCrash:
		return 4015
	case CloseUnknownEncryption:
		return 4016
	case CloseGraceful:
		return 1000
	default:
		return 4013
	}
}

// Driver is the voice-transport handle a Player owns (§4.6). One driver per
// connected player; it outlives individual tracks.
type Driver interface {
	// Dial attaches the driver to the transport endpoint described by
	// Credentials. Calling Dial again on an already-dialed driver redials
	// (§4.6 connect: "if already driving, just redial").
	Dial(ctx context.Context, creds Credentials) error

	// PlayTrack replaces whatever is currently playing with frames pulled
	// from src until EOF or Stop. onPlayable is invoked once the first frame
	// has actually reached the transport (§4.7 track playable). onTrackEnd
	// is invoked exactly once when src is exhausted on its own — never when
	// playback stops because Stop() cancelled it — so the caller can emit
	// TrackEnd for a track that finished unassisted (§4.7 "on track end").
	PlayTrack(src io.Reader, sampleRate, channels int, onPlayable, onTrackEnd func()) error

	// Stop halts the current track, if any. Safe to call with none playing.
	Stop()

	// Seek is delegated to the underlying filtered source by the caller;
	// the driver only needs to know the new byte offset reached so internal
	// position bookkeeping stays consistent for PositionMs.
	NotifySeeked(byteOffset int64)

	// Pause suspends or resumes frame delivery without dropping the track.
	Pause(paused bool)

	// SetVolume scales outgoing frames; v is in the 0.0-1.0 range.
	SetVolume(v float64)

	// PositionMs returns the current playback position of the active track.
	PositionMs() int64

	// OnDisconnect registers a callback invoked exactly once when the
	// transport connection ends, with the mapped close reason.
	OnDisconnect(fn func(reason CloseReason))

	// Disconnect tears the transport down. Idempotent.
	Disconnect()
}
