package transport

// Opus audio constants, grounded on the same RTP/WebRTC conventions the
// voice transport always assumes: 48kHz, 20ms frames, dynamic payload 111.
const (
	OpusSampleRate    = 48000
	OpusFrameDuration = 20 // milliseconds
	OpusFrameSamples  = OpusSampleRate * OpusFrameDuration / 1000
	OpusChannels      = 2
	OpusPayloadType   = 111
	OpusSDPFmtpLine   = "minptime=10;useinbandfec=1"
)

// Config holds the ICE configuration used to dial new peer connections.
type Config struct {
	ICEServers         []ICEServer
	ICETransportPolicy string
	MaxBitrate         int
}

// ICEServer is a STUN/TURN server entry.
type ICEServer struct {
	URLs       []string
	Username   string
	Credential string
}

func DefaultConfig() Config {
	return Config{
		ICEServers: []ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
		},
		ICETransportPolicy: "all",
		MaxBitrate:         64000,
	}
}
