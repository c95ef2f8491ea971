package llm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/go-metrics"
)

var (
	packageKey = []string{"koimport", "llm"}

	mKeyRequestsTotal        = append(packageKey, "requests", "total")
	mKeyRequestDurations     = append(packageKey, "requests", "durations", "seconds")
	mKeyTransientErrorsTotal = append(packageKey, "errors", "transient", "total")
	mKeyPermanentErrorsTotal = append(packageKey, "errors", "permanent", "total")
)

// DefaultMaxRetries is used when ProviderConfig.MaxRetries is not set.
const DefaultMaxRetries = 3

// ErrorKind classifies provider errors for retrying.
type ErrorKind int

const (
	Transient ErrorKind = iota
	Permanent
)

// newBackOff is replaced in tests.
var newBackOff = func() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 8 * time.Second
	return bo
}

// ClassifyStatus maps an HTTP status code to an ErrorKind. Zero means no
// response was received.
func ClassifyStatus(code int) ErrorKind {
	switch {
	case code == 0:
		return Transient
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return Transient
	case code >= 500:
		return Transient
	default:
		return Permanent
	}
}

// retry runs op until it succeeds, fails permanently or runs out of tries.
func retry[T any](ctx context.Context, provider string, maxTries int, classify func(error) ErrorKind, op func(context.Context) (T, error)) (T, error) {
	if maxTries <= 0 {
		maxTries = DefaultMaxRetries
	}
	labels := []metrics.Label{{Name: "provider", Value: provider}}

	return backoff.Retry(ctx, func() (T, error) {
		start := time.Now()
		metrics.IncrCounterWithLabels(mKeyRequestsTotal, 1, labels)
		v, err := op(ctx)
		metrics.MeasureSinceWithLabels(mKeyRequestDurations, start, labels)
		if err == nil {
			return v, nil
		}

		if ctx.Err() != nil || errors.Is(err, context.Canceled) || classify(err) == Permanent {
			metrics.IncrCounterWithLabels(mKeyPermanentErrorsTotal, 1, labels)
			slog.Debug("[llm] permanent error, stopping retries", "provider", provider, "error", err)
			return v, backoff.Permanent(err)
		}

		metrics.IncrCounterWithLabels(mKeyTransientErrorsTotal, 1, labels)
		slog.Warn("[llm] transient error encountered", "provider", provider, "error", err)
		return v, err
	}, backoff.WithBackOff(newBackOff()), backoff.WithMaxTries(uint(maxTries)))
}
