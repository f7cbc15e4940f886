package resolve

import "testing"

func TestParseQueryRejectsNonHTTP(t *testing.T) {
	r := NewDirectResolver(nil)
	if _, err := r.ParseQuery("not-a-url"); err == nil {
		t.Fatal("expected InvalidParameter error")
	}
}

func TestParseQueryAcceptsHTTPS(t *testing.T) {
	r := NewDirectResolver(nil)
	q, err := r.ParseQuery("https://example.invalid/track.mp3")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if q.Kind != QueryDirectURL {
		t.Fatalf("expected QueryDirectURL, got %v", q.Kind)
	}
}

func TestHintFromURLExtension(t *testing.T) {
	cases := map[string]string{
		"https://example.invalid/a.mp3":  "mp3",
		"https://example.invalid/a.flac": "flac",
		"https://example.invalid/a.wav":  "wav",
		"https://example.invalid/a":      "",
	}
	for url, want := range cases {
		if got := string(hintFromURL(url, "")); got != want {
			t.Fatalf("hintFromURL(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestShouldCreateAsyncIsTrue(t *testing.T) {
	r := NewDirectResolver(nil)
	if !r.ShouldCreateAsync() {
		t.Fatal("expected direct resolver to request async creation")
	}
}
