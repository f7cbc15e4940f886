// Package playerevents implements the event bridge (§4.7): a single set of
// callbacks registered for disconnect, periodic tick, and per-track
// lifecycle signals, each updating the player's shared Data record and
// emitting a notification.
package playerevents

import (
	"sync"
	"sync/atomic"

	"github.com/ibukiaudio/ibuki/internal/notify"
	"github.com/ibukiaudio/ibuki/internal/transport"
)

// Target is the narrow surface playerevents needs from its owning player:
// just the shared Data lock and the identifiers needed to stamp outgoing
// messages. It stands in for the weak reference the spec calls for — Go
// has no weak pointers, so instead the bridge is handed only what it needs
// rather than the player itself, which keeps it from extending the
// player's lifetime (§4.7: "captures weak references ... to avoid keeping
// the player alive").
type Target struct {
	Mu        *sync.Mutex
	Data      *Data
	Channel   *notify.Channel
	SessionID string
	GuildID   string
}

// Bridge is the single struct registered for all five event kinds.
type Bridge struct {
	target Target

	trackStartOnce atomic.Bool
	active         atomic.Bool

	onDestroySession func()
	onDisconnectDrv  func()
}

func New(target Target, onDestroySession, onDisconnectDriver func()) *Bridge {
	return &Bridge{target: target, onDestroySession: onDestroySession, onDisconnectDrv: onDisconnectDriver}
}

// ResetForTrack rearms the once-flag for a freshly started track so
// TrackStart can fire exactly once per track (§4.7 hard invariant).
func (b *Bridge) ResetForTrack() {
	b.trackStartOnce.Store(false)
}

// OnPeriodicTick records the given position and volume in Data and emits a
// PlayerUpdate carrying them.
func (b *Bridge) OnPeriodicTick(positionMs int64, volume float64) {
	b.target.Mu.Lock()
	b.target.Data.PositionMs = positionMs
	b.target.Data.Volume = volume
	b.target.Mu.Unlock()

	b.target.Channel.Send(notify.Message{
		Op:         notify.OpPlayerUpdate,
		SessionID:  b.target.SessionID,
		GuildID:    b.target.GuildID,
		PositionMs: positionMs,
		Volume:     volume,
	})
}

// OnTrackPlay marks the player unpaused.
func (b *Bridge) OnTrackPlay() {
	b.target.Mu.Lock()
	b.target.Data.Paused = false
	b.target.Mu.Unlock()
}

// OnTrackPause marks the player paused.
func (b *Bridge) OnTrackPause() {
	b.target.Mu.Lock()
	b.target.Data.Paused = true
	b.target.Mu.Unlock()
}

// OnTrackPlayable fires TrackStart exactly once per track and marks the
// bridge active.
func (b *Bridge) OnTrackPlayable() {
	b.active.Store(true)
	if !b.trackStartOnce.CompareAndSwap(false, true) {
		return
	}
	b.target.Channel.Send(notify.Message{
		Op:        notify.OpEvent,
		Type:      notify.EventTrackStart,
		SessionID: b.target.SessionID,
		GuildID:   b.target.GuildID,
	})
}

// OnTrackEnd clears the active track from Data and emits TrackEnd. reason
// defaults to "finished" when the caller does not know a more specific
// underlying cause.
func (b *Bridge) OnTrackEnd(reason string) {
	if reason == "" {
		reason = "finished"
	}
	b.active.Store(false)
	b.target.Mu.Lock()
	b.target.Data.TrackBlob = ""
	b.target.Data.PositionMs = 0
	b.target.Data.LengthMs = 0
	b.target.Data.IsStream = false
	b.target.Data.Active = false
	b.target.Data.State = StateEnded
	b.target.Mu.Unlock()

	b.target.Channel.Send(notify.Message{
		Op:        notify.OpEvent,
		Type:      notify.EventTrackEnd,
		SessionID: b.target.SessionID,
		GuildID:   b.target.GuildID,
		Reason:    reason,
	})
}

// OnDriverDisconnect marks the bridge inactive, tears the driver down,
// destroys the owning session, and emits WebSocketClosed with the mapped
// numeric code (§6 close-code table).
func (b *Bridge) OnDriverDisconnect(reason transport.CloseReason) {
	b.active.Store(false)
	if b.onDisconnectDrv != nil {
		b.onDisconnectDrv()
	}
	if b.onDestroySession != nil {
		b.onDestroySession()
	}
	b.target.Channel.Send(notify.Message{
		Op:        notify.OpEvent,
		Type:      notify.EventWebSocketClose,
		SessionID: b.target.SessionID,
		GuildID:   b.target.GuildID,
		Code:      transport.CloseCode(reason),
	})
}

// Active reports whether a track is currently playable/playing.
func (b *Bridge) Active() bool { return b.active.Load() }
