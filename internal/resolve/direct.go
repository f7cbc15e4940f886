package resolve

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/ibukiaudio/ibuki/internal/ibukierr"
	"github.com/ibukiaudio/ibuki/internal/source/decode"
)

// DirectResolver treats any identifier as a directly fetchable URL. It is
// the one concrete Resolver this repository ships (the catalogue-specific
// resolvers are explicit non-goals), supplementing the façade with a
// reference implementation grounded on resty.
type DirectResolver struct {
	client *resty.Client
}

func NewDirectResolver(client *resty.Client) *DirectResolver {
	if client == nil {
		client = resty.New()
	}
	return &DirectResolver{client: client}
}

func (d *DirectResolver) ParseQuery(identifier string) (Query, error) {
	if identifier == "" {
		return Query{}, ibukierr.New(ibukierr.KindInvalidParameter, "empty identifier")
	}
	if !strings.HasPrefix(identifier, "http://") && !strings.HasPrefix(identifier, "https://") {
		return Query{}, ibukierr.New(ibukierr.KindInvalidParameter, "identifier is not an http(s) url")
	}
	return Query{Kind: QueryDirectURL, Raw: identifier}, nil
}

func (d *DirectResolver) Resolve(ctx context.Context, q Query) (PlayableRef, error) {
	return PlayableRef{URL: q.Raw}, nil
}

func (d *DirectResolver) ShouldCreateAsync() bool { return true }

// MakePlayable performs the actual HTTP GET, buffering the whole body so
// the resulting reader is fully seekable (§4.3 requires an io.ReadSeeker).
func (d *DirectResolver) MakePlayable(ctx context.Context, ref PlayableRef) (io.ReadSeeker, decode.Hint, bool, error) {
	resp, err := d.client.R().SetContext(ctx).Get(ref.URL)
	if err != nil {
		return nil, "", false, ibukierr.Wrap(ibukierr.KindResolverError, "fetching direct url", err)
	}
	if resp.IsError() {
		return nil, "", false, ibukierr.New(ibukierr.KindResolverError, "direct url returned "+resp.Status())
	}
	return bytes.NewReader(resp.Body()), hintFromURL(ref.URL, resp.Header().Get("Content-Type")), true, nil
}

func hintFromURL(url, contentType string) decode.Hint {
	switch {
	case strings.Contains(contentType, "flac"):
		return decode.HintFLAC
	case strings.Contains(contentType, "mpeg"), strings.Contains(contentType, "mp3"):
		return decode.HintMP3
	case strings.Contains(contentType, "wav"):
		return decode.HintWAV
	}
	switch strings.ToLower(path.Ext(url)) {
	case ".flac":
		return decode.HintFLAC
	case ".mp3":
		return decode.HintMP3
	case ".wav":
		return decode.HintWAV
	default:
		return ""
	}
}
