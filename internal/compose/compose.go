// Package compose implements the compose adapter (§4.4): it bridges an
// asynchronous resolver to the synchronous, potentially blocking work of
// probing and constructing a filtered source.
package compose

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ibukiaudio/ibuki/internal/filterchain"
	"github.com/ibukiaudio/ibuki/internal/ibukierr"
	"github.com/ibukiaudio/ibuki/internal/resolve"
	"github.com/ibukiaudio/ibuki/internal/source"
)

// Defaults carries the sample-rate/channel-count fallback the filtered
// source uses until the decoder reports its real format (§4.3).
type Defaults struct {
	SampleRate int
	Channels   int
}

// Adapter couples a Resolver to filtered-source construction.
type Adapter struct {
	resolver resolve.Resolver
	defaults Defaults
}

func New(resolver resolve.Resolver, defaults Defaults) *Adapter {
	return &Adapter{resolver: resolver, defaults: defaults}
}

// ShouldCreateAsync delegates to the inner resolver (§4.4).
func (a *Adapter) ShouldCreateAsync() bool { return a.resolver.ShouldCreateAsync() }

// Create runs the whole pipeline synchronously and inline: resolve, make
// playable, then filtered-source construction, all on the caller's
// goroutine. Any failure is surfaced as AudioStreamFail.
func (a *Adapter) Create(ctx context.Context, identifier string, chain *filterchain.Holder) (*source.FilteredSource, error) {
	fs, err := a.build(ctx, identifier, chain)
	if err != nil {
		return nil, wrapAudioStreamFail(err)
	}
	return fs, nil
}

// CreateAsync resolves on the caller's goroutine (the resolver is expected
// to be doing its own asynchronous work internally, e.g. an HTTP fetch
// backed by a context-aware client) but runs filtered-source construction
// on a dedicated blocking worker goroutine via errgroup, then rejoins the
// result. This keeps probe/decoder setup — which may block on I/O — off
// whatever executor called CreateAsync (§4.4: "never construct on the
// async executor thread").
func (a *Adapter) CreateAsync(ctx context.Context, identifier string, chain *filterchain.Holder) (*source.FilteredSource, error) {
	g, gctx := errgroup.WithContext(ctx)
	var fs *source.FilteredSource

	g.Go(func() error {
		built, err := a.build(gctx, identifier, chain)
		if err != nil {
			return err
		}
		fs = built
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, wrapAudioStreamFail(err)
	}
	return fs, nil
}

func (a *Adapter) build(ctx context.Context, identifier string, chain *filterchain.Holder) (*source.FilteredSource, error) {
	query, err := a.resolver.ParseQuery(identifier)
	if err != nil {
		return nil, err
	}
	ref, err := a.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	input, hint, seekable, err := a.resolver.MakePlayable(ctx, ref)
	if err != nil {
		return nil, err
	}
	return source.New(input, hint, chain, seekable, a.defaults.SampleRate, a.defaults.Channels)
}

func wrapAudioStreamFail(err error) error {
	return ibukierr.Wrap(ibukierr.KindAudioStreamFail, "constructing audio stream", err)
}
