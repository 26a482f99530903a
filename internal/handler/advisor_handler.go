package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/portaldomei/mei-portal-go/internal/domain"
	"github.com/portaldomei/mei-portal-go/internal/service"
)

// ============================================================
// Consultor IA — /v1/advisor
// ============================================================

func advisorAskHandler(svc *service.AdvisorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/advisor")
		defer span.End()

		var req domain.AdvisorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := svc.Ask(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func advisorMetricsHandler(svc *service.AdvisorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/metrics/advisor")
		defer span.End()

		writeJSON(w, http.StatusOK, svc.Metrics(ctx))
	}
}
