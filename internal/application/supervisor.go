package application

import (
	"context"
	"fmt"
	"time"

	"directline-bridge/internal/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// TokenSupervisor runs every refresher of the process as one group.
// The first refresher to return, for whatever reason, stops all the others.
type TokenSupervisor struct {
	refreshers []*Refresher
	now        func() time.Time
}

// NewTokenSupervisor func
func NewTokenSupervisor(refreshers ...*Refresher) *TokenSupervisor {
	return &TokenSupervisor{
		refreshers: refreshers,
		now:        time.Now,
	}
}

// Run blocks until ctx is cancelled or a refresher exits.
// It returns nil on cancellation of ctx, otherwise the first exit reason.
func (s *TokenSupervisor) Run(ctx context.Context) error {
	if len(s.refreshers) == 0 {
		<-ctx.Done()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range s.refreshers {
		r := r
		g.Go(func() error {
			err := r.Run(gctx)
			if err == nil {
				err = domain.ErrRefresherExited
			}
			return fmt.Errorf("refresher %s: %w", r.Name(), err)
		})
	}

	err := g.Wait()
	if ctx.Err() != nil {
		logrus.Info("Token supervisor stopped")
		return nil
	}
	logrus.Errorf("Token supervisor stopped: %v", err)
	return err
}

// Status reports presence and expiry of every maintained token
func (s *TokenSupervisor) Status() []domain.TokenStatus {
	now := s.now()
	status := make([]domain.TokenStatus, 0, len(s.refreshers))
	for _, r := range s.refreshers {
		st := domain.TokenStatus{Source: r.Name()}
		if token, ok := r.Cell().Load(); ok {
			expiresAt := token.ExpiresAt
			st.Available = true
			st.ExpiresAt = &expiresAt
			st.Expired = token.Expired(now)
		}
		status = append(status, st)
	}
	return status
}
