package sweep

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catcord/sweeper/internal/ledger"
	"github.com/catcord/sweeper/internal/media"
)

func trackedUpload(eventID, mimetype string, ts, size int64) ledger.Upload {
	return ledger.Upload{
		EventID:     eventID,
		RoomID:      "!room:hs",
		Sender:      "@user:hs",
		Media:       media.Ref{Authority: "hs", MediaID: "m-" + eventID},
		Mimetype:    mimetype,
		SizeBytes:   size,
		TimestampMS: ts,
	}
}

func TestRetentionCutoffs(t *testing.T) {
	policy := Policy{ImageRetentionDays: 90, NonImageRetentionDays: 30}
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

	imageMS, nonImageMS := policy.RetentionCutoffs(now)

	assert.Equal(t, now.AddDate(0, 0, -90).UnixMilli(), imageMS)
	assert.Equal(t, now.AddDate(0, 0, -30).UnixMilli(), nonImageMS)
	assert.Less(t, imageMS, nonImageMS)
}

func TestRetentionPlan_AppliesPerClassCutoffs(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	led := &fakeLedger{uploads: []ledger.Upload{
		trackedUpload("$old-img", "image/png", now.AddDate(0, 0, -100).UnixMilli(), 10),
		trackedUpload("$new-img", "image/png", now.AddDate(0, 0, -50).UnixMilli(), 10),
		trackedUpload("$old-doc", "application/pdf", now.AddDate(0, 0, -40).UnixMilli(), 10),
		trackedUpload("$new-doc", "application/pdf", now.AddDate(0, 0, -10).UnixMilli(), 10),
	}}

	planner := NewPlanner(led, Policy{ImageRetentionDays: 90, NonImageRetentionDays: 30})
	planner.now = func() time.Time { return now }

	plan, err := planner.RetentionPlan(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, u := range plan {
		ids = append(ids, u.EventID)
	}
	assert.ElementsMatch(t, []string{"$old-img", "$old-doc"}, ids)
}

func TestPressurePlan_EmptyBelowThreshold(t *testing.T) {
	led := &fakeLedger{uploads: []ledger.Upload{trackedUpload("$a", "image/png", 10, 10)}}
	planner := NewPlanner(led, Policy{PressureThreshold: 0.85})

	plan, err := planner.PressurePlan(context.Background(), 0.50)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestPressurePlan_AllCandidatesAboveThreshold(t *testing.T) {
	led := &fakeLedger{uploads: []ledger.Upload{
		trackedUpload("$a", "image/png", 10, 10),
		trackedUpload("$b", "application/pdf", 20, 5),
	}}
	planner := NewPlanner(led, Policy{PressureThreshold: 0.85})

	plan, err := planner.PressurePlan(context.Background(), 0.90)
	require.NoError(t, err)
	assert.Len(t, plan, 2)
}

func TestShouldStop(t *testing.T) {
	assert.True(t, shouldStop(0.84, 0.85))
	assert.False(t, shouldStop(0.85, 0.85))
	assert.False(t, shouldStop(0.99, 0.85))
}

func TestReasonFor(t *testing.T) {
	policy := Policy{PressureThreshold: 0.85, EmergencyThreshold: 0.92}

	assert.Equal(t, ReasonPressure, policy.ReasonFor(0.86))
	assert.Equal(t, ReasonEmergency, policy.ReasonFor(0.92))
	assert.Equal(t, ReasonEmergency, policy.ReasonFor(0.99))
}

func TestReasonRedactionText(t *testing.T) {
	assert.Equal(t, "media retention policy", ReasonRetention.RedactionText())
	assert.Equal(t, "disk pressure", ReasonPressure.RedactionText())
	assert.Equal(t, "disk pressure (emergency)", ReasonEmergency.RedactionText())
}
