// Package wearable stores samples synced from the user's wearable and
// exposes them through a provider interface that is allowed to fail.
package wearable

import (
	"context"
	"errors"
	"time"
)

// Metric names a wearable measurement.
type Metric string

const (
	MetricHeartRate Metric = "heart_rate"
	MetricSteps     Metric = "steps"
)

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	return m == MetricHeartRate || m == MetricSteps
}

// Sample is one timestamped numeric reading.
type Sample struct {
	UserID     string    `json:"-"`
	Metric     Metric    `json:"metric"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
	SyncedAt   time.Time `json:"synced_at"`
}

// Provider reads wearable data. Either call may fail; callers treat failure
// as the feature being unavailable.
type Provider interface {
	Latest(ctx context.Context, userID string, m Metric) (*Sample, error)
	SamplesInRange(ctx context.Context, userID string, m Metric, from, to time.Time) ([]Sample, error)
}

// LatestWithTimeout reads the latest sample, giving up after timeout. A
// timeout, an error or a missing sample all yield nil.
func LatestWithTimeout(ctx context.Context, p Provider, userID string, m Metric, timeout time.Duration) *Sample {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		s   *Sample
		err error
	}
	ch := make(chan result, 1)
	go func() {
		s, err := p.Latest(ctx, userID, m)
		ch <- result{s, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil
		}
		return r.s
	case <-ctx.Done():
		return nil
	}
}

// ErrNoSamples is returned by Latest when the user has no sample for the
// metric.
var ErrNoSamples = errors.New("no samples")
