package crontab

import (
	"context"
	"fmt"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"jan-server/services/proposal-api/internal/infrastructure/metrics"
	"jan-server/services/proposal-api/internal/utils/platformerrors"
)

const (
	DefaultReconcileInterval = 10               // in minutes
	DefaultPendingAge        = 15 * time.Minute // artifacts younger than this are still streaming
	CronJobTimeout           = 2 * time.Minute  // Timeout for each cron job execution
)

// PendingCounter counts artifacts that are still pending and were created before cutoff.
type PendingCounter interface {
	CountPendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Config struct {
	Enabled         bool
	IntervalMinutes int
	PendingAge      time.Duration
}

// Crontab runs the pending-artifact reconciliation job. It only reports the
// backlog; pending rows are left untouched.
type Crontab struct {
	ctab    *crontab.Crontab
	cfg     Config
	pending PendingCounter
	log     zerolog.Logger
	now     func() time.Time
}

func NewCrontab(cfg Config, pending PendingCounter, log zerolog.Logger) *Crontab {
	if cfg.IntervalMinutes <= 0 {
		cfg.IntervalMinutes = DefaultReconcileInterval
	}
	if cfg.PendingAge <= 0 {
		cfg.PendingAge = DefaultPendingAge
	}
	return &Crontab{
		ctab:    crontab.New(),
		cfg:     cfg,
		pending: pending,
		log:     log.With().Str("component", "reconcile").Logger(),
		now:     time.Now,
	}
}

// Run schedules the job and blocks until ctx is done.
func (c *Crontab) Run(ctx context.Context) error {
	if !c.cfg.Enabled {
		<-ctx.Done()
		return nil
	}

	// execute once on server start
	c.reconcile(ctx)

	cronExpr := fmt.Sprintf("*/%d * * * *", c.cfg.IntervalMinutes)
	if err := c.ctab.AddJob(cronExpr, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
		defer cancel()
		c.reconcile(jobCtx)
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add reconcile job")
	}
	c.log.Info().Msgf("Pending reconciliation scheduled: every %d minute(s)", c.cfg.IntervalMinutes)

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

// reconcile returns the backlog it observed, or -1 when counting failed.
func (c *Crontab) reconcile(ctx context.Context) int64 {
	cutoff := c.now().Add(-c.cfg.PendingAge)
	count, err := c.pending.CountPendingBefore(ctx, cutoff)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to count pending proposals")
		return -1
	}

	metrics.PendingBacklog.Set(float64(count))
	if count > 0 {
		c.log.Warn().
			Int64("pending", count).
			Time("cutoff", cutoff).
			Msg("Proposals stuck in pending state")
	}
	return count
}
