package trackcodec

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"

	"github.com/ibukiaudio/ibuki/internal/ibukierr"
)

// Decode parses a base64 blob produced by Encode (or an interoperable
// encoder) back into a Track (§3, §4.5). Unknown versions above 3 fail with
// UnknownVersion; malformed Modified-UTF-8 fails with Malformed.
func Decode(blob string) (*Track, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, ibukierr.Wrap(ibukierr.KindMalformed, "base64 decode failed", err)
	}
	if len(raw) < 4 {
		return nil, ibukierr.New(ibukierr.KindMalformed, "blob shorter than header")
	}

	header := binary.BigEndian.Uint32(raw[:4])
	payloadLen := int(header & 0x3FFFFFFF)
	if 4+payloadLen > len(raw) {
		return nil, ibukierr.New(ibukierr.KindMalformed, "declared payload length exceeds blob")
	}
	payload := raw[4 : 4+payloadLen]
	tail := raw[4+payloadLen:]

	off := 0
	if off >= len(payload) {
		return nil, ibukierr.New(ibukierr.KindMalformed, "empty payload")
	}
	version := payload[off]
	off++
	if version < 1 || version > 3 {
		return nil, ibukierr.New(ibukierr.KindUnknownVersion, "unsupported track descriptor version")
	}

	t := &Track{}
	var err2 error
	t.Title, off, err2 = readModifiedUTF8(payload, off)
	if err2 != nil {
		return nil, err2
	}
	t.Author, off, err2 = readModifiedUTF8(payload, off)
	if err2 != nil {
		return nil, err2
	}
	t.LengthMs, off, err2 = readInt64(payload, off)
	if err2 != nil {
		return nil, err2
	}
	t.Identifier, off, err2 = readModifiedUTF8(payload, off)
	if err2 != nil {
		return nil, err2
	}
	if off >= len(payload) {
		return nil, ibukierr.New(ibukierr.KindMalformed, "truncated is_stream flag")
	}
	t.IsStream = payload[off] != 0
	off++

	if version >= 2 {
		var uri string
		uri, off, err2 = readModifiedUTF8(payload, off)
		if err2 != nil {
			return nil, err2
		}
		t.URI = &uri
	}
	if version >= 3 {
		var artwork, isrc string
		artwork, off, err2 = readModifiedUTF8(payload, off)
		if err2 != nil {
			return nil, err2
		}
		t.ArtworkURL = &artwork
		isrc, off, err2 = readModifiedUTF8(payload, off)
		if err2 != nil {
			return nil, err2
		}
		t.ISRC = &isrc
	}

	t.SourceName, off, err2 = readModifiedUTF8(payload, off)
	if err2 != nil {
		return nil, err2
	}

	// Position is extracted from the final 8 bytes of the declared payload,
	// not counting any trailer (§4.5).
	if len(payload) < 8 || off > len(payload)-8 {
		return nil, ibukierr.New(ibukierr.KindMalformed, "truncated position field")
	}
	positionOffset := len(payload) - 8
	t.PositionMs = int64(binary.BigEndian.Uint64(payload[positionOffset:]))

	trailerSeekable := scanTrailer(tail)
	t.normalize(trailerSeekable)

	return t, nil
}

func readInt64(data []byte, offset int) (int64, int, error) {
	if offset+8 > len(data) {
		return 0, 0, ibukierr.New(ibukierr.KindMalformed, "truncated int64 field")
	}
	return int64(binary.BigEndian.Uint64(data[offset : offset+8])), offset + 8, nil
}

// scanTrailer looks for the nullable seekability trailer anywhere in the
// bytes following the declared payload, returning nil when absent.
func scanTrailer(tail []byte) *bool {
	if bytes.Contains(tail, []byte(trailerSeekableYes)) {
		v := true
		return &v
	}
	if bytes.Contains(tail, []byte(trailerSeekableNo)) {
		v := false
		return &v
	}
	return nil
}
