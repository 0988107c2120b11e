package main

import (
	"context"
	"errors"

	"fertadvisor/fertilizer"
	"fertadvisor/logging"

	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerRemote guards a fertilizer.Remote with a circuit breaker so a down
// scoring service costs nothing but an immediate local fallback.
type BreakerRemote struct {
	remote fertilizer.Remote
	cb     *gobreaker.CircuitBreaker[fertilizer.Recommendation]
}

// NewBreakerRemote trips once at least MinRequests calls were made in the
// interval and the failure ratio reaches FailureThreshold.
func NewBreakerRemote(name string, remote fertilizer.Remote, cfg BreakerConfig) *BreakerRemote {
	breakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[fertilizer.Recommendation](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			breakerState.WithLabelValues(name).Set(stateValue(to))
		},
		// The caller gave up; that says nothing about the service's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &BreakerRemote{remote: remote, cb: cb}
}

// Recommend implements fertilizer.Remote.
func (b *BreakerRemote) Recommend(ctx context.Context, req fertilizer.Request) (fertilizer.Recommendation, error) {
	return b.cb.Execute(func() (fertilizer.Recommendation, error) {
		return b.remote.Recommend(ctx, req)
	})
}

// State reports the breaker's current state.
func (b *BreakerRemote) State() gobreaker.State { return b.cb.State() }

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
