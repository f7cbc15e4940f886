// Package resolve defines the source façade (§"Source façade", §4.4): the
// thin trait abstraction the player and compose adapter use to turn a
// caller-supplied identifier into a byte-oriented media source, without the
// core depending on any particular third-party catalogue resolver. Those
// resolvers are explicit non-goals of this specification; this package
// only fixes their interface and supplies one concrete, supplemented
// implementation for plain direct URLs.
package resolve

import (
	"context"
	"io"

	"github.com/ibukiaudio/ibuki/internal/source/decode"
)

// QueryKind classifies a parsed query.
type QueryKind string

const (
	QueryDirectURL QueryKind = "direct_url"
)

// Query is the parsed form of a caller-supplied identifier (§"Source
// façade"), produced by ParseQuery and consumed by Resolve.
type Query struct {
	Kind QueryKind
	Raw  string
}

// PlayableRef is whatever a resolver's Resolve step produces: either a
// ready byte source or a deferred reference MakePlayable turns into one.
type PlayableRef struct {
	URL string
}

// Resolver is the façade every external source resolver implements.
type Resolver interface {
	// ParseQuery interprets a caller-supplied identifier.
	ParseQuery(identifier string) (Query, error)

	// Resolve turns a Query into a PlayableRef. May perform network I/O.
	Resolve(ctx context.Context, q Query) (PlayableRef, error)

	// MakePlayable turns a PlayableRef into a seekable byte source plus the
	// format hint and seekability the filtered source needs to construct
	// itself (§4.3).
	MakePlayable(ctx context.Context, ref PlayableRef) (input io.ReadSeeker, hint decode.Hint, seekable bool, err error)

	// ShouldCreateAsync reports whether this resolver's Resolve step should
	// run off the caller's synchronous path (§4.4).
	ShouldCreateAsync() bool
}
