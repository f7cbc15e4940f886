package trackcodec

import (
	"encoding/base64"
	"testing"
)

func mustBase64Decode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("base64 decode: %v", err)
	}
	return b
}

func mustBase64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func TestEndToEndScenario1(t *testing.T) {
	original := &Track{
		Title:      "Example",
		Author:     "Artist",
		Identifier: "abc",
		LengthMs:   185000,
		IsStream:   false,
		IsSeekable: true,
		SourceName: "http",
	}

	blob := Encode(original)
	decoded, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if decoded.Title != original.Title ||
		decoded.Author != original.Author ||
		decoded.Identifier != original.Identifier ||
		decoded.LengthMs != original.LengthMs ||
		decoded.IsStream != original.IsStream ||
		decoded.IsSeekable != original.IsSeekable ||
		decoded.SourceName != original.SourceName {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestRoundTripWithURIVersion2(t *testing.T) {
	uri := "https://example.invalid/track.mp3"
	original := &Track{
		Title:      "Song",
		Author:     "Someone",
		Identifier: "id-1",
		LengthMs:   9000,
		SourceName: "direct",
		URI:        &uri,
		PositionMs: 1500,
	}
	decoded, err := Decode(Encode(original))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.URI == nil || *decoded.URI != uri {
		t.Fatalf("uri not round-tripped: %+v", decoded.URI)
	}
	if decoded.PositionMs != 1500 {
		t.Fatalf("position not round-tripped: %d", decoded.PositionMs)
	}
}

func TestRoundTripWithArtworkAndISRCVersion3(t *testing.T) {
	uri := "https://example.invalid/t.mp3"
	artwork := "https://example.invalid/art.png"
	isrc := "USRC17607839"
	original := &Track{
		Title: "Full", Author: "Meta", Identifier: "id-2",
		SourceName: "direct", URI: &uri, ArtworkURL: &artwork, ISRC: &isrc,
	}
	decoded, err := Decode(Encode(original))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.ArtworkURL == nil || *decoded.ArtworkURL != artwork {
		t.Fatalf("artwork not round-tripped")
	}
	if decoded.ISRC == nil || *decoded.ISRC != isrc {
		t.Fatalf("isrc not round-tripped")
	}
}

func TestStreamInvariantLengthZero(t *testing.T) {
	original := &Track{
		Title: "Live", Author: "Radio", Identifier: "live-1",
		SourceName: "http", IsStream: true, LengthMs: 99999,
	}
	decoded, err := Decode(Encode(original))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.LengthMs != 0 {
		t.Fatalf("stream length_ms should normalize to 0, got %d", decoded.LengthMs)
	}
	if decoded.IsSeekable {
		t.Fatal("stream without seekable trailer override should default to non-seekable")
	}
}

func TestUnknownVersionFails(t *testing.T) {
	blob := Encode(&Track{Title: "x", Author: "y", Identifier: "z", SourceName: "s"})
	raw := mustBase64Decode(t, blob)
	// header is 4 bytes; payload[0] is the version byte.
	raw[4] = 9
	if _, err := Decode(mustBase64Encode(raw)); err == nil {
		t.Fatal("expected UnknownVersion error")
	}
}

func TestMalformedBase64Fails(t *testing.T) {
	if _, err := Decode("not-valid-base64!!!"); err == nil {
		t.Fatal("expected Malformed error")
	}
}

func TestUnicodeRoundTrip(t *testing.T) {
	original := &Track{
		Title: "日本語タイトル \x00 😀", Author: "Ärtïst", Identifier: "u-1",
		SourceName: "direct",
	}
	decoded, err := Decode(Encode(original))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Title != original.Title {
		t.Fatalf("unicode title mismatch: %q vs %q", decoded.Title, original.Title)
	}
	if decoded.Author != original.Author {
		t.Fatalf("unicode author mismatch: %q vs %q", decoded.Author, original.Author)
	}
}
