package trackcodec

import (
	"encoding/base64"
	"encoding/binary"
)

const (
	// trailerSeekableYes / trailerSeekableNo are the nullable seekability
	// override trailer strings appended after the payload (§3).
	trailerSeekableYes = "IBUKI:seekableY"
	trailerSeekableNo  = "IBUKI:seekableN"
)

// chooseVersion picks the minimal version that can represent t (§4.5):
// 3 if artwork_url or isrc is present; 2 if uri is present; 1 otherwise.
func chooseVersion(t *Track) uint8 {
	if t.ArtworkURL != nil || t.ISRC != nil {
		return 3
	}
	if t.URI != nil {
		return 2
	}
	return 1
}

// Encode serialises a Track into a base64 blob: a 4-byte header (top two
// bits flags, low 30 bits payload length) followed by the versioned payload
// and a seekability trailer, always written as seekableY or seekableN
// (§3, §4.5).
func Encode(t *Track) string {
	version := chooseVersion(t)

	payload := make([]byte, 0, 128)
	payload = append(payload, version)
	payload = writeModifiedUTF8(payload, t.Title)
	payload = writeModifiedUTF8(payload, t.Author)
	payload = appendInt64(payload, t.LengthMs)
	payload = writeModifiedUTF8(payload, t.Identifier)
	payload = append(payload, boolByte(t.IsStream))

	if version >= 2 {
		payload = writeModifiedUTF8(payload, derefOr(t.URI, ""))
	}
	if version >= 3 {
		payload = writeModifiedUTF8(payload, derefOr(t.ArtworkURL, ""))
		payload = writeModifiedUTF8(payload, derefOr(t.ISRC, ""))
	}

	payload = writeModifiedUTF8(payload, t.SourceName)
	payload = appendInt64(payload, t.PositionMs)

	header := make([]byte, 4)
	// Top two bits reserved as flags; always zero for descriptors this
	// implementation produces.
	binary.BigEndian.PutUint32(header, uint32(len(payload))&0x3FFFFFFF)

	blob := make([]byte, 0, 4+len(payload)+20)
	blob = append(blob, header...)
	blob = append(blob, payload...)
	blob = append(blob, []byte(trailerFor(t))...)

	return base64.StdEncoding.EncodeToString(blob)
}

func trailerFor(t *Track) string {
	if t.IsSeekable {
		return trailerSeekableYes
	}
	return trailerSeekableNo
}

func appendInt64(buf []byte, v int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return append(buf, b[:]...)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
