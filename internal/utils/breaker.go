package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCallerGone marks a call cut short on our side, for example a client
// that disconnected mid-stream. Such calls do not count against a provider.
var ErrCallerGone = errors.New("caller went away")

// CallerGone tags err as caused by the caller rather than the provider.
func CallerGone(err error) error {
	return fmt.Errorf("%w: %w", ErrCallerGone, err)
}

// IsCallerGone reports whether err came from our caller going away.
func IsCallerGone(err error) bool {
	return errors.Is(err, ErrCallerGone) || errors.Is(err, context.Canceled)
}

// NewBreaker builds the breaker used around every outbound provider call.
func NewBreaker(name string, log *zap.Logger) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsCallerGone(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn(
				"circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return gobreaker.NewCircuitBreaker(settings)
}

func ExecuteWithBreaker[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})

	if err != nil {
		return *new(T), err
	}

	return res.(T), nil
}
