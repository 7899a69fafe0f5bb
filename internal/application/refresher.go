package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"directline-bridge/internal/domain"
	"directline-bridge/internal/ports/output"
	"directline-bridge/pkg/metrics"
	"directline-bridge/pkg/tokencell"

	"github.com/sirupsen/logrus"
)

// SchedulePolicy decides how long to wait after a successful fetch
type SchedulePolicy interface {
	Next(token domain.AccessToken, now time.Time) time.Duration
}

// ExpiryPolicy wakes up margin before the token expires
type ExpiryPolicy struct {
	Margin time.Duration
}

// Next returns max(0, expiry - margin - now)
func (p ExpiryPolicy) Next(token domain.AccessToken, now time.Time) time.Duration {
	d := token.ExpiresAt.Sub(now) - p.Margin
	if d < 0 {
		return 0
	}
	return d
}

// FixedPolicy waits the same interval after every success
type FixedPolicy struct {
	Interval time.Duration
}

// Next func
func (p FixedPolicy) Next(domain.AccessToken, time.Time) time.Duration {
	if p.Interval < 0 {
		return 0
	}
	return p.Interval
}

// Refresher keeps one token cell populated from one token source
type Refresher struct {
	source    output.TokenSource
	cell      *tokencell.Cell[domain.AccessToken]
	policy    SchedulePolicy
	failSleep time.Duration

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewRefresher func
func NewRefresher(source output.TokenSource, cell *tokencell.Cell[domain.AccessToken], policy SchedulePolicy, failSleep time.Duration) *Refresher {
	if failSleep < 0 {
		failSleep = 0
	}
	return &Refresher{
		source:    source,
		cell:      cell,
		policy:    policy,
		failSleep: failSleep,
		now:       time.Now,
		after:     time.After,
	}
}

// Name returns the name of the underlying source
func (r *Refresher) Name() string {
	return r.source.Name()
}

// Cell returns the cell the refresher publishes into
func (r *Refresher) Cell() *tokencell.Cell[domain.AccessToken] {
	return r.cell
}

// Run prepares the source and then refreshes until ctx is cancelled.
// A failed Prepare is returned immediately. A failed Fetch keeps the
// previously published token and is retried after the failure sleep.
// The failure sleep is also the shortest wait after a success.
func (r *Refresher) Run(ctx context.Context) error {
	name := r.source.Name()
	log := logrus.WithField("source", name)

	if err := r.source.Prepare(ctx); err != nil {
		if !errors.Is(err, domain.ErrConfiguration) {
			err = fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
		}
		log.Errorf("Token source preparation failed: %v", err)
		return err
	}
	log.Info("Token refresher started")

	for {
		if err := ctx.Err(); err != nil {
			log.Info("Token refresher stopped")
			return err
		}

		// an in-flight exchange is allowed to finish; the client timeout bounds it
		token, err := r.source.Fetch(context.WithoutCancel(ctx))
		if err == nil && !token.ExpiresAt.After(r.now()) {
			err = fmt.Errorf("%w: token expired at %s", domain.ErrTokenResponse, token.ExpiresAt.Format(time.RFC3339))
		}
		metrics.TokenRefreshTotal.WithLabelValues(name, metrics.Result(err)).Inc()

		wait := r.failSleep
		if err != nil {
			log.Warnf("Token refresh failed, retrying in %v: %v", wait, err)
		} else {
			r.cell.Store(token)
			metrics.TokenExpiryTimestamp.WithLabelValues(name).Set(float64(token.ExpiresAt.Unix()))

			wait = r.policy.Next(token, r.now())
			if wait < r.failSleep {
				log.Warnf("Token lifetime leaves %v before the next refresh, waiting %v instead", wait, r.failSleep)
				wait = r.failSleep
			}
			log.WithField("expires_at", token.ExpiresAt.Format(time.RFC3339)).
				Infof("Token refreshed, next refresh in %v", wait)
		}

		select {
		case <-ctx.Done():
			log.Info("Token refresher stopped")
			return ctx.Err()
		case <-r.after(wait):
		}
	}
}
