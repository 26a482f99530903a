package service

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/portaldomei/mei-portal-go/internal/calc"
	"github.com/portaldomei/mei-portal-go/internal/infra/observability"
)

var calcTracer = otel.Tracer("service/calculators")

// CalculatorService runs the simulation engine over the active policy
// constants and records per-run metrics.
type CalculatorService struct {
	policy  calc.Policy
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCalculatorService creates a new calculator service.
func NewCalculatorService(policy calc.Policy, metrics *observability.Metrics, logger *zap.Logger) *CalculatorService {
	return &CalculatorService{policy: policy, metrics: metrics, logger: logger}
}

// Kinds lists the available calculators for the site's menu.
func (s *CalculatorService) Kinds(ctx context.Context) []calc.Descriptor {
	_, span := calcTracer.Start(ctx, "CalculatorService.Kinds")
	defer span.End()

	return calc.Kinds()
}

// Policy exposes the loaded policy constants, served read-only so the
// frontend can render the reference values next to each simulator.
func (s *CalculatorService) Policy() calc.Policy {
	return s.policy
}

// Compute runs one simulation. Errors mean an unknown kind or a body that
// is not valid JSON; bad numeric input comes back in the result's state.
func (s *CalculatorService) Compute(ctx context.Context, kind calc.Kind, raw json.RawMessage) (any, error) {
	ctx, span := calcTracer.Start(ctx, "CalculatorService.Compute")
	defer span.End()
	span.SetAttributes(attribute.String("calc.kind", string(kind)))

	start := time.Now()
	result, err := calc.Compute(kind, raw, s.policy)
	if err != nil {
		s.logger.Warn("calculator run rejected",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return nil, err
	}

	state := calc.StateOf(result)
	s.metrics.IncrCalcRun(string(kind), string(state))
	s.metrics.RecordRequestDuration("calc/"+string(kind), time.Since(start))

	s.logger.Debug("calculator run",
		zap.String("kind", string(kind)),
		zap.String("state", string(state)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return result, nil
}
