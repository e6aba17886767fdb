// Package app wires one sweeper run: it builds the ledger, the Matrix client
// and the metrics set once per invocation, drives the ingest, planning,
// eviction and notification phases in order, and tears everything down at the
// end. There is no ambient global state; every component hangs off the App
// value.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/catcord/sweeper/internal/config"
	"github.com/catcord/sweeper/internal/ledger"
	"github.com/catcord/sweeper/internal/logger"
	"github.com/catcord/sweeper/internal/matrix"
	"github.com/catcord/sweeper/internal/media"
	"github.com/catcord/sweeper/internal/metrics"
	"github.com/catcord/sweeper/internal/notify"
	"github.com/catcord/sweeper/internal/sweep"
)

// protocolClient is what the app needs from the chat transport: the engine's
// RoomClient capability plus authentication and invite handling.
type protocolClient interface {
	sweep.RoomClient
	Whoami(ctx context.Context) (string, error)
	JoinAllInvites(ctx context.Context, allowlist []string) ([]string, error)
}

// uploadStore is the ledger surface the app manages.
type uploadStore interface {
	sweep.Ledger
	Count(ctx context.Context) (int64, error)
	Close() error
}

// App holds the collaborators of a single run.
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	runID   string
	store   uploadStore
	client  protocolClient
	locator sweep.Locator
	probe   sweep.DiskProbe
	metrics *metrics.Metrics
}

// New builds an App from resolved configuration. Failure here is the fatal
// setup tier: a run that cannot open its ledger or construct its client
// never gets to evict anything.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	runID := uuid.NewString()
	log = log.With(logger.Field{Key: "run_id", Value: runID})

	store, err := ledger.Open(cfg.Paths.StateDB)
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger: %w", err)
	}

	client, err := matrix.NewClient(cfg.Homeserver.URL, cfg.Homeserver.MXID, cfg.Homeserver.AccessToken)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("cannot create matrix client: %w", err)
	}

	return &App{
		cfg:     cfg,
		log:     log,
		runID:   runID,
		store:   store,
		client:  client,
		locator: media.NewDirLocator(cfg.Paths.MediaRoot),
		probe:   media.UsedFraction,
		metrics: metrics.New("sweeper"),
	}, nil
}

// Close releases the run's resources.
func (a *App) Close() error {
	return a.store.Close()
}

// Run performs one full pass for the given trigger: refresh the ledger from
// the rooms, compute the eviction plan, execute it, then report. Per-item
// and per-room failures are recovered inside the pass; only setup-tier
// failures are returned.
func (a *App) Run(ctx context.Context, trigger sweep.Trigger, dryRun bool) (sweep.Stats, error) {
	start := time.Now()

	me, err := a.client.Whoami(ctx)
	if err != nil {
		return sweep.Stats{}, fmt.Errorf("cannot authenticate: %w", err)
	}
	a.log.Info("🧹 starting sweep",
		logger.Field{Key: "as", Value: me},
		logger.Field{Key: "trigger", Value: string(trigger)},
		logger.Field{Key: "dry_run", Value: dryRun})

	allowlist := a.cfg.Rooms.Allowlist
	if joined, err := a.client.JoinAllInvites(ctx, allowlist); err != nil {
		a.log.Warn("invite auto-join failed", logger.Field{Key: "error", Value: err})
	} else if len(joined) > 0 {
		a.log.Info("auto-joined invites", logger.Field{Key: "rooms", Value: joined})
	}

	syncer := sweep.NewSyncer(a.client, a.store, a.cfg.Sync.PageLimit, a.log)
	stats, err := syncer.Sync(ctx, allowlist)
	if err != nil {
		return stats, fmt.Errorf("room sync failed: %w", err)
	}
	if count, err := a.store.Count(ctx); err == nil {
		a.log.Info("ledger refreshed",
			logger.Field{Key: "tracked_uploads", Value: count},
			logger.Field{Key: "rooms_synced", Value: stats.RoomsSynced},
			logger.Field{Key: "rooms_failed", Value: stats.RoomsFailed})
	}

	policy := sweep.Policy{
		ImageRetentionDays:    a.cfg.Policy.ImageRetentionDays,
		NonImageRetentionDays: a.cfg.Policy.NonImageRetentionDays,
		PressureThreshold:     a.cfg.Policy.PressureThreshold,
		EmergencyThreshold:    a.cfg.Policy.EmergencyThreshold,
	}

	plan, err := a.buildPlan(ctx, trigger, policy)
	if err != nil {
		return stats, err
	}
	a.log.Info("eviction plan computed", logger.Field{Key: "candidates", Value: len(plan)})

	executor := sweep.NewExecutor(a.store, a.client, a.locator, a.probe, policy, a.cfg.Paths.MediaRoot, a.log)
	executor.DryRun = dryRun

	execStats, err := executor.Execute(ctx, trigger, plan)
	if err != nil {
		return stats, err
	}
	stats.DeletedCount = execStats.DeletedCount
	stats.FreedBytes = execStats.FreedBytes
	stats.SkippedCount = execStats.SkippedCount
	stats.FileFailures = execStats.FileFailures

	duration := time.Since(start)
	a.log.Info("✅ sweep finished",
		logger.Field{Key: "deleted", Value: stats.DeletedCount},
		logger.Field{Key: "freed_bytes", Value: stats.FreedBytes},
		logger.Field{Key: "skipped", Value: stats.SkippedCount},
		logger.Field{Key: "duration_ms", Value: duration.Milliseconds()})

	if a.cfg.Notifications.SendDeletionSummary {
		notifier := notify.New(a.client, a.cfg.Notifications.LogRoomID, a.cfg.Notifications.SendZeroDeletionSummaries, a.log)
		notifier.Send(ctx, trigger, stats, dryRun)
	}

	a.metrics.RecordRun(trigger, stats, duration.Seconds())
	if url := a.cfg.Metrics.PushgatewayURL; url != "" {
		if err := a.metrics.Push(url, a.cfg.Metrics.JobName); err != nil {
			a.log.Warn("metrics push failed", logger.Field{Key: "error", Value: err})
		}
	}

	return stats, nil
}

// buildPlan computes the ordered candidate list for the trigger. A pressure
// run that finds the disk already under the threshold gets an empty plan.
func (a *App) buildPlan(ctx context.Context, trigger sweep.Trigger, policy sweep.Policy) ([]ledger.Upload, error) {
	planner := sweep.NewPlanner(a.store, policy)

	switch trigger {
	case sweep.TriggerRetention:
		return planner.RetentionPlan(ctx)
	case sweep.TriggerPressure:
		used, err := a.probe(a.cfg.Paths.MediaRoot)
		if err != nil {
			return nil, fmt.Errorf("cannot probe disk usage: %w", err)
		}
		a.log.Info("disk usage probed",
			logger.Field{Key: "used_fraction", Value: used},
			logger.Field{Key: "pressure_threshold", Value: policy.PressureThreshold})
		return planner.PressurePlan(ctx, used)
	default:
		return nil, fmt.Errorf("unknown trigger: %s", trigger)
	}
}
