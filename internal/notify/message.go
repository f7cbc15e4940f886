// Package notify implements the session's notification channel (§4.8): an
// ordered, unbounded multi-producer single-consumer queue of JSON-framed
// lifecycle messages, delivered at-most-once to whichever listener is
// currently attached.
package notify

// Op is the top-level message discriminator (§6 notification framing).
type Op string

const (
	OpReady       Op = "Ready"
	OpPlayerUpdate Op = "PlayerUpdate"
	OpStats       Op = "Stats"
	OpEvent       Op = "Event"
)

// EventType further tags an Op == OpEvent message.
type EventType string

const (
	EventTrackStart     EventType = "TrackStartEvent"
	EventTrackEnd       EventType = "TrackEndEvent"
	EventTrackException EventType = "TrackExceptionEvent"
	EventTrackStuck     EventType = "TrackStuckEvent"
	EventWebSocketClose EventType = "WebSocketClosedEvent"
)

// Message is the JSON payload sent down the wire. Fields are optional
// depending on Op/Type; the wsapi layer is responsible for rendering only
// the fields relevant to a given message.
type Message struct {
	Op          Op        `json:"op"`
	Type        EventType `json:"type,omitempty"`
	SessionID   string    `json:"sessionId,omitempty"`
	Resumed     bool      `json:"resumed,omitempty"`
	ResumeToken string    `json:"resumeToken,omitempty"`

	GuildID string `json:"guildId,omitempty"`

	// PlayerUpdate fields.
	PositionMs int64   `json:"position,omitempty"`
	Volume     float64 `json:"volume,omitempty"`

	// Track event fields.
	Track  string `json:"track,omitempty"`
	Reason string `json:"reason,omitempty"`

	// WebSocketClosed fields.
	Code int `json:"code,omitempty"`

	// Stats payload, opaque to this package.
	Stats any `json:"stats,omitempty"`
}
