package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotAuthenticated is returned when unfollowing is attempted before a successful login
var ErrNotAuthenticated = errors.New("not authenticated")

// Report summarizes one unfollow run
type Report struct {
	Unfollowed []string
	// Skipped are exceptions or users unfollowed in an earlier run
	Skipped []string
	// Missing are profiles without a following button
	Missing []string
	Failed  []string
}

// Unfollower toggles follow state for a list of users
type Unfollower struct {
	session Session
	auth    *AuthMachine
	ledger  Ledger
	delay   time.Duration
	logger  zerolog.Logger
}

// NewUnfollower creates an unfollower pausing delay between profiles
func NewUnfollower(s Session, auth *AuthMachine, ledger Ledger, delay time.Duration, logger zerolog.Logger) *Unfollower {
	return &Unfollower{
		session: s,
		auth:    auth,
		ledger:  ledger,
		delay:   delay,
		logger:  logger,
	}
}

// Run unfollows every target not excepted and not already in the ledger
func (u *Unfollower) Run(ctx context.Context, targets []string) (Report, error) {
	var report Report

	if !u.auth.Authenticated() {
		return report, ErrNotAuthenticated
	}

	exceptions, err := u.ledger.Exceptions(ctx)
	if err != nil {
		return report, fmt.Errorf("load exceptions: %w", err)
	}
	excepted := make(map[string]struct{}, len(exceptions))
	for _, name := range exceptions {
		excepted[NormalizeUsername(name)] = struct{}{}
	}

	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		name := NormalizeUsername(target)
		logger := u.logger.With().Str("user", name).Int("index", i+1).Int("total", len(targets)).Logger()

		if _, ok := excepted[name]; ok {
			logger.Info().Msg("skipping exception")
			report.Skipped = append(report.Skipped, name)
			continue
		}

		done, err := u.ledger.IsUnfollowed(ctx, name)
		if err != nil {
			return report, fmt.Errorf("check ledger: %w", err)
		}
		if done {
			logger.Info().Msg("already unfollowed")
			report.Skipped = append(report.Skipped, name)
			continue
		}

		found, err := u.session.ToggleFollow(ctx, name)
		switch {
		case err != nil:
			logger.Error().Err(err).Msg("unfollow failed")
			report.Failed = append(report.Failed, name)
		case !found:
			logger.Warn().Msg("following button not found")
			report.Missing = append(report.Missing, name)
		default:
			if err := u.ledger.MarkUnfollowed(ctx, name); err != nil {
				return report, fmt.Errorf("record unfollow: %w", err)
			}
			logger.Info().Msg("unfollowed")
			report.Unfollowed = append(report.Unfollowed, name)
		}

		if u.delay > 0 && i < len(targets)-1 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(u.delay):
			}
		}
	}

	return report, nil
}
