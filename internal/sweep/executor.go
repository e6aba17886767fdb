package sweep

import (
	"context"
	"os"

	"github.com/catcord/sweeper/internal/ledger"
	"github.com/catcord/sweeper/internal/logger"
)

// Executor consumes an eviction plan one candidate at a time. Candidates are
// strictly sequential: the outcome of candidate N (including its effect on
// disk usage) is known before candidate N+1 starts, which keeps the pressure
// re-probe causally accurate and stops related uploads racing over
// overlapping blob files.
type Executor struct {
	ledger    Ledger
	client    RoomClient
	locator   Locator
	probe     DiskProbe
	policy    Policy
	mediaRoot string
	log       *logger.Logger

	// DryRun reports what a run would do without redacting, deleting files,
	// or touching the ledger.
	DryRun bool
}

// NewExecutor wires an executor over the run's collaborators.
func NewExecutor(led Ledger, client RoomClient, locator Locator, probe DiskProbe, policy Policy, mediaRoot string, log *logger.Logger) *Executor {
	return &Executor{
		ledger:    led,
		client:    client,
		locator:   locator,
		probe:     probe,
		policy:    policy,
		mediaRoot: mediaRoot,
		log:       log,
	}
}

// Execute processes the plan in order and returns the run totals. Failures
// below the setup tier are isolated per candidate: a failed redaction leaves
// the ledger row in place for the next run, and a blob file that cannot be
// deleted never blocks the eviction it belongs to.
func (e *Executor) Execute(ctx context.Context, trigger Trigger, plan []ledger.Upload) (Stats, error) {
	var stats Stats

	usedFraction := 0.0
	if trigger == TriggerPressure {
		used, err := e.probe(e.mediaRoot)
		if err != nil {
			return stats, err
		}
		usedFraction = used
	}

	for _, candidate := range plan {
		paths, err := e.locator.Locate(candidate.Media)
		if err != nil {
			// Blobs may be gone or unreadable; the redaction is still the
			// authoritative eviction signal.
			e.log.Warn("media lookup failed",
				logger.Field{Key: "event_id", Value: candidate.EventID},
				logger.Field{Key: "error", Value: err})
			paths = nil
		}

		if e.DryRun {
			stats.DeletedCount++
			stats.FreedBytes += totalFileSize(paths)
			e.log.Info("[DRY-RUN] would redact and delete",
				logger.Field{Key: "event_id", Value: candidate.EventID},
				logger.Field{Key: "files", Value: len(paths)})
			continue
		}

		reason := ReasonRetention
		if trigger == TriggerPressure {
			reason = e.policy.ReasonFor(usedFraction)
		}

		if err := e.client.Redact(ctx, candidate.RoomID, candidate.EventID, reason.RedactionText()); err != nil {
			// Leave the ledger row intact and keep the blob files; the
			// candidate is retried on a later run.
			stats.SkippedCount++
			e.log.Warn("redaction failed, keeping candidate for next run",
				logger.Field{Key: "event_id", Value: candidate.EventID},
				logger.Field{Key: "room_id", Value: candidate.RoomID},
				logger.Field{Key: "error", Value: err})
			continue
		}

		freed, failures := e.deleteFiles(paths)
		stats.FreedBytes += freed
		stats.FileFailures += failures

		if err := e.ledger.Remove(ctx, candidate.EventID); err != nil {
			// The message is already redacted; the orphan row fails
			// harmlessly on the next run.
			e.log.Warn("failed to remove ledger row after redaction",
				logger.Field{Key: "event_id", Value: candidate.EventID},
				logger.Field{Key: "error", Value: err})
		}
		stats.DeletedCount++

		e.log.Debug("evicted upload",
			logger.Field{Key: "event_id", Value: candidate.EventID},
			logger.Field{Key: "reason", Value: string(reason)},
			logger.Field{Key: "files", Value: len(paths)})

		if trigger == TriggerPressure {
			used, err := e.probe(e.mediaRoot)
			if err != nil {
				e.log.Warn("disk re-probe failed, continuing with last reading",
					logger.Field{Key: "error", Value: err})
			} else {
				usedFraction = used
			}
			if shouldStop(usedFraction, e.policy.PressureThreshold) {
				e.log.Info("disk usage back under threshold, stopping sweep",
					logger.Field{Key: "used_fraction", Value: usedFraction})
				break
			}
		}
	}

	return stats, nil
}

// deleteFiles removes the located blob files best-effort, returning the bytes
// actually reclaimed and the number of files that could not be deleted.
func (e *Executor) deleteFiles(paths []string) (freed int64, failures int) {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if !os.IsNotExist(err) {
				failures++
				e.log.Warn("failed to stat media file",
					logger.Field{Key: "path", Value: path},
					logger.Field{Key: "error", Value: err})
			}
			continue
		}
		if err := os.Remove(path); err != nil {
			failures++
			e.log.Warn("failed to delete media file",
				logger.Field{Key: "path", Value: path},
				logger.Field{Key: "error", Value: err})
			continue
		}
		freed += info.Size()
	}
	return freed, failures
}

// totalFileSize sums the sizes of the files that currently exist, without
// touching them. Dry runs report freed bytes from this.
func totalFileSize(paths []string) int64 {
	var total int64
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil {
			total += info.Size()
		}
	}
	return total
}
