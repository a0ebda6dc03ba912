package calculation

import (
	"context"

	"github.com/quoteline/quoteline/internal/domain"
)

// Service is the rating-service boundary consumed by the pipeline. All
// numeric rating formulas live behind it; the pipeline only builds requests
// and merges responses.
type Service interface {
	CalculateRiskItems(ctx context.Context, req domain.RiskItemCalcRequest) (*domain.RiskItemCalcResponse, error)
	CalculateAggregate(ctx context.Context, req domain.AggregateRequest) (*domain.AggregateResponse, error)
	ApplyAdjustments(ctx context.Context, req domain.AdjustmentRequest) (*domain.AdjustmentResult, error)
	CalculateProRata(ctx context.Context, req domain.ProRataRequest) (*domain.ProRataResult, error)
	GetBreakdown(ctx context.Context, proposalID string) (*domain.RawBreakdown, error)
}
