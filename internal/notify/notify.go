// Package notify reports run summaries into a log room. Notification
// delivery is best-effort; a failed send never affects the run outcome.
package notify

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/catcord/sweeper/internal/logger"
	"github.com/catcord/sweeper/internal/sweep"
)

// Notifier sends human-readable run summaries.
type Notifier struct {
	client   sweep.RoomClient
	log      *logger.Logger
	roomID   string
	sendZero bool
}

// New creates a notifier posting to roomID. An empty roomID disables
// notifications entirely. sendZero controls whether runs that evicted
// nothing are still reported.
func New(client sweep.RoomClient, roomID string, sendZero bool, log *logger.Logger) *Notifier {
	return &Notifier{client: client, log: log, roomID: roomID, sendZero: sendZero}
}

// Summarize formats the run summary line for a trigger and its totals.
func Summarize(trigger sweep.Trigger, stats sweep.Stats, dryRun bool) string {
	prefix := ""
	if dryRun {
		prefix = "[DRY-RUN] "
	}

	icon := "🧹"
	label := "Retention"
	if trigger == sweep.TriggerPressure {
		icon = "⚠️"
		label = "Pressure"
	}

	return fmt.Sprintf("%s%s %s: deleted=%d freed=%s",
		prefix, icon, label, stats.DeletedCount, humanize.IBytes(uint64(stats.FreedBytes)))
}

// Send posts the summary for a finished run. Zero-result runs are suppressed
// unless configured otherwise; dry runs are always reported so operators can
// see what a real run would do.
func (n *Notifier) Send(ctx context.Context, trigger sweep.Trigger, stats sweep.Stats, dryRun bool) {
	if n.roomID == "" {
		return
	}
	if stats.DeletedCount == 0 && !n.sendZero && !dryRun {
		return
	}

	text := Summarize(trigger, stats, dryRun)
	if err := n.client.SendText(ctx, n.roomID, text); err != nil {
		n.log.Warn("failed to send run summary",
			logger.Field{Key: "room_id", Value: n.roomID},
			logger.Field{Key: "error", Value: err})
	}
}
