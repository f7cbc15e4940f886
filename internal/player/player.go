// Package player implements the per-session player state machine (§4.6):
// lifecycle, driver attach/detach, track replacement, seek, pause/resume,
// volume, and event emission to the notification channel.
package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ibukiaudio/ibuki/internal/compose"
	"github.com/ibukiaudio/ibuki/internal/filterchain"
	"github.com/ibukiaudio/ibuki/internal/ibukierr"
	"github.com/ibukiaudio/ibuki/internal/notify"
	"github.com/ibukiaudio/ibuki/internal/playerevents"
	"github.com/ibukiaudio/ibuki/internal/scheduler"
	"github.com/ibukiaudio/ibuki/internal/source"
	"github.com/ibukiaudio/ibuki/internal/trackcodec"
	"github.com/ibukiaudio/ibuki/internal/transport"
)

// DriverFactory builds a fresh transport.Driver on first connect (§4.6
// connect: "if no driver exists, create one").
type DriverFactory func() transport.Driver

// Player owns one voice session's driver handle and at most one active
// track. Mutable state lives in Data behind mu, matching the spec's "short
// async lock... never held across an I/O call" policy.
type Player struct {
	mu   sync.Mutex
	data playerevents.Data

	sessionID string
	guildID   string

	chain   *filterchain.Holder
	compose *compose.Adapter
	channel *notify.Channel

	driverFactory DriverFactory
	driver        transport.Driver
	bridge        *playerevents.Bridge

	currentSource *source.FilteredSource

	// sched is the process-wide scheduler every player registers its
	// periodic position-tick task on at connect time (§4.6 connect:
	// "create one with a shared scheduler... register periodic-tick event
	// listeners"), torn down again at disconnect. tickInterval paces it;
	// nil sched (e.g. a standalone Player under test) simply never emits
	// PlayerUpdate on a timer.
	sched        *scheduler.Scheduler
	tickInterval time.Duration

	onDestroySession   func()
	onDriverDisconnect func()
}

// New constructs an idle player. No driver is created until Connect.
func New(sessionID, guildID string, chain *filterchain.Holder, composeAdapter *compose.Adapter, channel *notify.Channel, driverFactory DriverFactory, sched *scheduler.Scheduler, tickInterval time.Duration) *Player {
	return &Player{
		sessionID:     sessionID,
		guildID:       guildID,
		chain:         chain,
		compose:       composeAdapter,
		channel:       channel,
		driverFactory: driverFactory,
		sched:         sched,
		tickInterval:  tickInterval,
		data:          playerevents.Data{State: playerevents.StateIdle, Volume: 1.0},
	}
}

// tickTaskName identifies this player's periodic-tick task on the shared
// scheduler; stable across Connect/Disconnect cycles for one player.
func (p *Player) tickTaskName() string {
	return fmt.Sprintf("player-tick:%s:%s", p.sessionID, p.guildID)
}

// emitPeriodicTick reads the driver's current position and the mirrored
// volume and bridges them to a PlayerUpdate (§4.7 "on periodic tick: read
// current position from the handle... emit a PlayerUpdate message"). A noop
// when no track is active, matching songbird's "no track handle" case in
// the teacher's periodic event.
func (p *Player) emitPeriodicTick() {
	p.mu.Lock()
	driver := p.driver
	bridge := p.bridge
	volume := p.data.Volume
	p.mu.Unlock()
	if driver == nil || bridge == nil || !bridge.Active() {
		return
	}
	bridge.OnPeriodicTick(driver.PositionMs(), volume)
}

// Snapshot returns a copy of the current mutable state for REST/session
// introspection.
func (p *Player) Snapshot() playerevents.Data {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data
}

// Connect dials the voice transport (§4.6 connect). Idempotent: if a
// driver already exists it is simply redialed.
func (p *Player) Connect(ctx context.Context, creds transport.Credentials) error {
	p.mu.Lock()
	fresh := p.driver == nil
	if fresh {
		p.driver = p.driverFactory()
		p.bridge = playerevents.New(playerevents.Target{
			Mu: &p.mu, Data: &p.data, Channel: p.channel,
			SessionID: p.sessionID, GuildID: p.guildID,
		}, p.callDestroySession, p.callDriverDisconnect)
		p.driver.OnDisconnect(p.bridge.OnDriverDisconnect)
	}
	driver := p.driver
	p.data.State = playerevents.StateConnecting
	p.mu.Unlock()

	if fresh && p.sched != nil && p.tickInterval > 0 {
		p.sched.Register(scheduler.Task{
			Name:     p.tickTaskName(),
			Interval: p.tickInterval,
			Run:      p.emitPeriodicTick,
		})
	}

	if err := driver.Dial(ctx, creds); err != nil {
		return err
	}

	p.mu.Lock()
	p.data.State = playerevents.StateConnected
	p.mu.Unlock()
	return nil
}

// callDestroySession and callDriverDisconnect forward to whatever hooks
// the owning session manager installed via SetDisconnectHooks, defaulting
// to a no-op so a standalone Player (e.g. under test) never panics on a
// driver event.
func (p *Player) callDestroySession() {
	p.mu.Lock()
	fn := p.onDestroySession
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (p *Player) callDriverDisconnect() {
	p.mu.Lock()
	fn := p.onDriverDisconnect
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SetDisconnectHooks lets the session manager observe driver disconnects
// without the player importing the session package (avoiding an import
// cycle: session owns players, not the reverse).
func (p *Player) SetDisconnectHooks(onDestroySession, onDriverDisconnect func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDestroySession = onDestroySession
	p.onDriverDisconnect = onDriverDisconnect
}

// Play decodes the track descriptor, resolves it to a filtered source,
// replaces whatever is currently playing, and registers per-track
// listeners (§4.6 play).
func (p *Player) Play(ctx context.Context, encoded string) error {
	track, err := trackcodec.Decode(encoded)
	if err != nil {
		return err
	}

	if track.URI == nil {
		return ibukierr.New(ibukierr.KindInvalidParameter, "track descriptor has no playable uri")
	}

	fs, err := p.compose.CreateAsync(ctx, *track.URI, p.chain)
	if err != nil {
		return err
	}

	p.mu.Lock()
	driver := p.driver
	volume := p.data.Volume
	p.mu.Unlock()
	if driver == nil {
		return ibukierr.New(ibukierr.KindMissingDriver, "play requested before connect")
	}

	p.Stop()

	p.mu.Lock()
	p.currentSource = fs
	p.data.TrackBlob = encoded
	p.data.LengthMs = track.LengthMs
	p.data.IsStream = track.IsStream
	p.data.PositionMs = 0
	p.data.State = playerevents.StatePlaying
	p.data.Active = true
	bridge := p.bridge
	p.mu.Unlock()

	driver.SetVolume(volume)
	bridge.ResetForTrack()
	bridge.OnTrackPlay()

	onTrackEnd := func() { p.onTrackNaturalEnd(fs) }
	if err := driver.PlayTrack(fs, fs.SampleRate(), fs.Channels(), bridge.OnTrackPlayable, onTrackEnd); err != nil {
		return err
	}
	return nil
}

// onTrackNaturalEnd is the driver's callback for a track that ran to
// completion on its own, as opposed to an explicit Stop() (§4.7 "on track
// end... emit TrackEnd"). Guarded by filtered-source identity so a stale
// callback from a track that was already replaced (and whose pump had
// already been cancelled) cannot clear a newer track's state.
func (p *Player) onTrackNaturalEnd(fs *source.FilteredSource) {
	p.mu.Lock()
	if p.currentSource != fs {
		p.mu.Unlock()
		return
	}
	p.currentSource = nil
	bridge := p.bridge
	p.mu.Unlock()

	_ = fs.Close()
	if bridge != nil {
		bridge.OnTrackEnd("finished")
	}
}

// Stop halts the current track, if any, and drops the handle (§4.6 stop).
func (p *Player) Stop() {
	p.mu.Lock()
	driver := p.driver
	fs := p.currentSource
	bridge := p.bridge
	p.currentSource = nil
	hadTrack := p.data.TrackBlob != ""
	p.mu.Unlock()

	if driver != nil && hadTrack {
		driver.Stop()
	}
	if fs != nil {
		_ = fs.Close()
	}
	if hadTrack && bridge != nil {
		bridge.OnTrackEnd("finished")
	}
}

// Seek is a noop if the target equals the current position or exceeds the
// track length for a non-stream (§4.6 seek).
func (p *Player) Seek(positionMs, lengthMs int64, isStream bool) error {
	p.mu.Lock()
	fs := p.currentSource
	current := p.data.PositionMs
	p.mu.Unlock()

	if fs == nil {
		return nil
	}
	if positionMs == current {
		return nil
	}
	if !isStream && lengthMs > 0 && positionMs > lengthMs {
		return nil
	}

	channels := fs.Channels()
	sampleRate := fs.SampleRate()
	frame := positionMs * int64(sampleRate) / 1000
	byteOffset := 44 + frame*int64(2*channels)

	if _, err := fs.Seek(byteOffset, ioSeekStart); err != nil {
		return err
	}

	p.mu.Lock()
	p.data.PositionMs = positionMs
	driver := p.driver
	p.mu.Unlock()
	if driver != nil {
		driver.NotifySeeked(byteOffset)
	}
	return nil
}

// ioSeekStart mirrors io.SeekStart without importing "io" solely for a
// constant used once.
const ioSeekStart = 0

// Pause is a noop if already in the target state (§4.6 pause). The paused
// flag itself is applied by the bridge (OnTrackPlay/OnTrackPause), matching
// §4.7's "paused" transition being an event-path responsibility rather than
// a direct command-path write to Data.
func (p *Player) Pause(flag bool) {
	p.mu.Lock()
	already := p.data.Paused == flag
	driver := p.driver
	bridge := p.bridge
	p.mu.Unlock()
	if already || driver == nil {
		return
	}
	driver.Pause(flag)
	if flag {
		bridge.OnTrackPause()
	} else {
		bridge.OnTrackPlay()
	}
	p.mu.Lock()
	if flag {
		p.data.State = playerevents.StatePaused
	} else {
		p.data.State = playerevents.StatePlaying
	}
	p.mu.Unlock()
}

// SetFilters rebuilds and atomically swaps the filter chain this player's
// filtered source reads from (§4.2 tie-break: a reader never observes a
// half-updated chain). Takes effect on the next buffer the filtered source
// pulls, including for an already-playing track.
func (p *Player) SetFilters(cfg filterchain.Config) error {
	next, err := filterchain.New(cfg)
	if err != nil {
		return err
	}
	p.mu.Lock()
	fs := p.currentSource
	p.mu.Unlock()
	if fs != nil {
		next.SetSampleRate(fs.SampleRate())
	}
	p.chain.Swap(next)
	return nil
}

// SetVolume updates both the driver and the mirrored Data field (§4.6
// set_volume).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	driver := p.driver
	p.data.Volume = v
	p.mu.Unlock()
	if driver != nil {
		driver.SetVolume(v)
	}
}

// Disconnect stops playback, drops the driver, and marks disconnected
// (§4.6 disconnect).
func (p *Player) Disconnect() {
	p.Stop()
	if p.sched != nil {
		p.sched.Unregister(p.tickTaskName())
	}
	p.mu.Lock()
	driver := p.driver
	p.driver = nil
	p.bridge = nil
	p.data.State = playerevents.StateDisconnected
	p.mu.Unlock()
	if driver != nil {
		driver.Disconnect()
	}
}
