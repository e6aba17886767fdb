package sweep

import (
	"context"
	"time"

	"github.com/catcord/sweeper/internal/ledger"
)

// Planner turns ledger contents and disk state into an ordered eviction plan.
// It has no side effects; consuming the plan is the executor's job.
type Planner struct {
	ledger Ledger
	policy Policy
	now    func() time.Time
}

// NewPlanner creates a planner over the given ledger and policy.
func NewPlanner(led Ledger, policy Policy) *Planner {
	return &Planner{ledger: led, policy: policy, now: time.Now}
}

// RetentionPlan returns every upload past its class cutoff, in sweep order.
// The retention sweep has no early stop; the whole plan is processed.
func (p *Planner) RetentionPlan(ctx context.Context) ([]ledger.Upload, error) {
	cutoffImage, cutoffNonImage := p.policy.RetentionCutoffs(p.now())
	return p.ledger.SelectForRetention(ctx, cutoffImage, cutoffNonImage)
}

// PressurePlan returns the eviction candidates for the pressure sweep given
// the current disk usage. When usage is already below the pressure threshold
// the plan is empty. The returned sequence is an upper bound: the executor
// re-probes the disk after each committed deletion and stops as soon as usage
// drops back under the threshold.
func (p *Planner) PressurePlan(ctx context.Context, usedFraction float64) ([]ledger.Upload, error) {
	if shouldStop(usedFraction, p.policy.PressureThreshold) {
		return nil, nil
	}
	return p.ledger.SelectForPressure(ctx)
}
