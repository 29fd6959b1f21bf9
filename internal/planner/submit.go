package planner

import (
	"context"
	"fmt"
	"log"

	"lendlab/internal/domain"
	"lendlab/internal/storage"
)

// Submitter signs and submits an assembled plan as one atomic unit of
// work. This package treats it as opaque: a digest on success, an error
// otherwise. There is no partial submission.
type Submitter interface {
	Submit(ctx context.Context, plan *domain.ClaimPlan) (digest string, err error)
}

// SubmitResult reports the outcome of one executed plan.
type SubmitResult struct {
	PlanID             string
	Digest             string
	AssetsRequested    int
	AssetsConsolidated int
}

// String renders the caller-visible summary, e.g. "swapped 2/3 assets".
func (r *SubmitResult) String() string {
	return fmt.Sprintf("swapped %d/%d assets (plan %s)", r.AssetsConsolidated, r.AssetsRequested, r.PlanID[:8])
}

// Execute submits the plan and optionally records the outcome. Submission
// errors propagate to the caller unchanged and the plan is discarded; no
// automatic retry happens here — retrying means re-planning against a
// freshly rebuilt reward ledger.
func Execute(ctx context.Context, plan *domain.ClaimPlan, submitter Submitter, records storage.ClaimRecordStore) (*SubmitResult, error) {
	digest, err := submitter.Submit(ctx, plan)
	if err != nil {
		if records != nil {
			recordOutcome(ctx, records, plan, domain.ClaimStatusFailed, nil)
		}
		return nil, err
	}

	if records != nil {
		recordOutcome(ctx, records, plan, domain.ClaimStatusConfirmed, &digest)
	}

	return &SubmitResult{
		PlanID:             plan.ID,
		Digest:             digest,
		AssetsRequested:    plan.AssetsRequested,
		AssetsConsolidated: plan.AssetsConsolidated,
	}, nil
}

// recordOutcome persists the claim record; storage failures are logged,
// not propagated, since the chain outcome is already settled.
func recordOutcome(ctx context.Context, records storage.ClaimRecordStore, plan *domain.ClaimPlan, status string, digest *string) {
	record := &domain.ClaimRecord{
		PlanID:             plan.ID,
		OwnerID:            plan.OwnerID,
		Mode:               plan.Mode.String(),
		AssetsRequested:    plan.AssetsRequested,
		AssetsConsolidated: plan.AssetsConsolidated,
		Status:             status,
		Digest:             digest,
		SubmittedAtMs:      plan.CreatedAtMs,
	}
	if plan.TargetCoinType != "" {
		target := plan.TargetCoinType
		record.TargetCoinType = &target
	}
	if err := records.Insert(ctx, record); err != nil {
		log.Printf("[planner] record claim %s: %v", plan.ID[:8], err)
	}
}
