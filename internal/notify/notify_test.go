package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catcord/sweeper/internal/logger"
	"github.com/catcord/sweeper/internal/sweep"
)

type fakeSender struct {
	sweep.RoomClient
	sent []string
	err  error
}

func (f *fakeSender) SendText(_ context.Context, _ string, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "text", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func TestSummarize(t *testing.T) {
	stats := sweep.Stats{DeletedCount: 3, FreedBytes: 5 * 1024 * 1024}

	assert.Equal(t, "🧹 Retention: deleted=3 freed=5.0 MiB",
		Summarize(sweep.TriggerRetention, stats, false))
	assert.Equal(t, "⚠️ Pressure: deleted=3 freed=5.0 MiB",
		Summarize(sweep.TriggerPressure, stats, false))
	assert.Equal(t, "[DRY-RUN] 🧹 Retention: deleted=3 freed=5.0 MiB",
		Summarize(sweep.TriggerRetention, stats, true))
}

func TestSend(t *testing.T) {
	ctx := context.Background()

	t.Run("sends summary", func(t *testing.T) {
		sender := &fakeSender{}
		n := New(sender, "!logs:hs", false, testLogger(t))
		n.Send(ctx, sweep.TriggerRetention, sweep.Stats{DeletedCount: 2, FreedBytes: 10}, false)
		require.Len(t, sender.sent, 1)
		assert.Contains(t, sender.sent[0], "deleted=2")
	})

	t.Run("suppresses zero result", func(t *testing.T) {
		sender := &fakeSender{}
		n := New(sender, "!logs:hs", false, testLogger(t))
		n.Send(ctx, sweep.TriggerRetention, sweep.Stats{}, false)
		assert.Empty(t, sender.sent)
	})

	t.Run("zero result sent when configured", func(t *testing.T) {
		sender := &fakeSender{}
		n := New(sender, "!logs:hs", true, testLogger(t))
		n.Send(ctx, sweep.TriggerRetention, sweep.Stats{}, false)
		assert.Len(t, sender.sent, 1)
	})

	t.Run("dry run always sent", func(t *testing.T) {
		sender := &fakeSender{}
		n := New(sender, "!logs:hs", false, testLogger(t))
		n.Send(ctx, sweep.TriggerPressure, sweep.Stats{}, true)
		assert.Len(t, sender.sent, 1)
	})

	t.Run("no room configured", func(t *testing.T) {
		sender := &fakeSender{}
		n := New(sender, "", true, testLogger(t))
		n.Send(ctx, sweep.TriggerRetention, sweep.Stats{DeletedCount: 5}, false)
		assert.Empty(t, sender.sent)
	})

	t.Run("send failure is swallowed", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("M_LIMIT_EXCEEDED")}
		n := New(sender, "!logs:hs", false, testLogger(t))
		n.Send(ctx, sweep.TriggerRetention, sweep.Stats{DeletedCount: 1}, false)
		assert.Empty(t, sender.sent)
	})
}
