package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/portaldomei/mei-portal-go/internal/calc"
	"github.com/portaldomei/mei-portal-go/internal/service"
)

// ============================================================
// Simuladores — /v1/calculators
// ============================================================

func listCalculatorsHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/calculators")
		defer span.End()

		writeJSON(w, http.StatusOK, map[string]any{
			"calculators": svc.Kinds(ctx),
		})
	}
}

func policyHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/calculators/policy")
		defer span.End()

		p := svc.Policy()

		modalities := make([]map[string]any, 0, len(p.LoanModalities))
		for _, m := range p.LoanModalities {
			modalities = append(modalities, map[string]any{
				"kind":            m.Kind,
				"name":            m.Name,
				"monthlyRate":     m.MonthlyRate.InexactFloat64(),
				"maxInstallments": m.MaxInstallments,
				"maxAmountNote":   m.MaxAmountNote,
				"singlePeriod":    m.SinglePeriod,
			})
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"year":           p.Year,
			"minimumWage":    p.MinimumWage.InexactFloat64(),
			"loanModalities": modalities,
		})
	}
}

func computeHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/calculators/{kind}")
		defer span.End()

		kind := calc.Kind(chi.URLParam(r, "kind"))
		span.SetAttributes(attribute.String("calc.kind", string(kind)))

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(body) == 0 {
			body = []byte("{}")
		}

		result, err := svc.Compute(ctx, kind, json.RawMessage(body))
		if err != nil {
			logger.Debug("calculator request rejected",
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
