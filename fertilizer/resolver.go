package fertilizer

import (
	"context"
	"time"

	"fertadvisor/logging"
)

// Source tells which stage of the Resolver produced a recommendation.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// DefaultRemoteTimeout bounds a remote scoring call when none is configured.
const DefaultRemoteTimeout = 5 * time.Second

// Remote is an external scoring service computing the same recommendation.
type Remote interface {
	Recommend(ctx context.Context, req Request) (Recommendation, error)
}

// Result is a resolved recommendation. RemoteErr holds the remote failure
// when the local engine had to answer.
type Result struct {
	Recommendation Recommendation
	Source         Source
	RemoteErr      error
}

// Resolver asks the remote service first and falls back to the local engine
// on any remote failure: transport error, non-2xx, bad body, timeout or an
// open circuit.
type Resolver struct {
	engine  *Engine
	remote  Remote
	timeout time.Duration
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRemote sets the remote service and its per-call timeout.
func WithRemote(remote Remote, timeout time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.remote = remote
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// NewResolver returns a resolver over engine. Without WithRemote it always
// answers locally.
func NewResolver(engine *Engine, opts ...ResolverOption) *Resolver {
	if engine == nil {
		engine = defaultEngine
	}
	r := &Resolver{engine: engine, timeout: DefaultRemoteTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Engine returns the local engine.
func (r *Resolver) Engine() *Engine { return r.engine }

// Resolve returns the remote answer when available, else the local one. The
// only error is the local engine's *ConfigurationError.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Result, error) {
	var remoteErr error
	if r.remote != nil {
		rec, err := r.callRemote(ctx, req)
		if err == nil {
			return Result{Recommendation: rec, Source: SourceRemote}, nil
		}
		remoteErr = err
		logging.Ctx(ctx).Warn().Err(err).
			Str("crop", req.CropType).
			Msg("remote scoring failed, using local engine")
	}

	rec, err := r.engine.Recommend(req.SoilData, req.CropType, req.GrowthStage)
	if err != nil {
		return Result{RemoteErr: remoteErr}, err
	}
	return Result{Recommendation: rec, Source: SourceLocal, RemoteErr: remoteErr}, nil
}

func (r *Resolver) callRemote(ctx context.Context, req Request) (Recommendation, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.remote.Recommend(ctx, req)
}
