// Package trackcodec encodes and decodes the self-describing track
// descriptor to and from a length-prefixed, base64-wrapped byte blob (§3,
// §4.5). Strings use Java Modified UTF-8; integers are big-endian; booleans
// are single bytes.
package trackcodec

// Track is the self-describing record §3 defines.
type Track struct {
	Title       string
	Author      string
	Identifier  string
	SourceName  string // non-empty
	LengthMs    int64  // 0 for live streams
	PositionMs  int64
	IsStream    bool
	IsSeekable  bool
	URI         *string
	ArtworkURL  *string
	ISRC        *string
}

// Normalize enforces the §3 invariant: is_stream ⇒ length_ms == 0 and
// is_seekable defaults to false unless a trailer override says otherwise.
// trailerSeekable is nil when no trailer was present in the decoded blob.
func (t *Track) normalize(trailerSeekable *bool) {
	if t.IsStream {
		t.LengthMs = 0
		if trailerSeekable != nil {
			t.IsSeekable = *trailerSeekable
		} else {
			t.IsSeekable = false
		}
	} else if trailerSeekable != nil {
		t.IsSeekable = *trailerSeekable
	}
}
