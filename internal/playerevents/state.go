package playerevents

// State is one of the lifecycle states a player can be in (§4.6).
type State string

const (
	StateIdle         State = "idle"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StatePlaying      State = "playing"
	StatePaused       State = "paused"
	StateEnded        State = "ended"
	StateDisconnected State = "disconnected"
)

// Data is the player's mutable record, shared between the command path and
// the event callbacks behind a single short-held mutex (§5 shared-resource
// policy: "never held across an I/O call").
type Data struct {
	State      State
	TrackBlob  string
	LengthMs   int64
	IsStream   bool
	PositionMs int64
	Paused     bool
	Volume     float64
	Active     bool
}
