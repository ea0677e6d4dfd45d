package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// Pinger is satisfied by *sql.DB and *sqlx.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewWaitPolicy retries with exponential backoff for up to maxElapsed
func NewWaitPolicy(maxElapsed time.Duration) backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxElapsed
	return policy
}

// WaitForDB pings until the database answers or the policy gives up
func WaitForDB(ctx context.Context, p Pinger, policy backoff.BackOff) error {
	attempt := 1
	err := backoff.Retry(func() error {
		if err := p.PingContext(ctx); err != nil {
			logger.Info("Waiting for database", zap.Int("attempt", attempt), zap.Error(err))
			attempt++
			return err
		}
		return nil
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return fmt.Errorf("database not reachable after %d attempts: %w", attempt, err)
	}

	logger.Info("Database available", zap.Int("attempts", attempt))
	return nil
}
