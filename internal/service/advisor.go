package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/portaldomei/mei-portal-go/internal/domain"
	"github.com/portaldomei/mei-portal-go/internal/infra/observability"
	"github.com/portaldomei/mei-portal-go/internal/port"
)

var advisorTracer = otel.Tracer("service/advisor")

const maxQuestionLength = 2000

// AdvisorService relays the chat widget's questions to the generative
// agent and tracks the usage metrics served on the admin dashboard.
type AdvisorService struct {
	agent   port.AdvisorAgent
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAdvisorService creates a new advisor service.
func NewAdvisorService(agent port.AdvisorAgent, metrics *observability.Metrics, logger *zap.Logger) *AdvisorService {
	return &AdvisorService{agent: agent, metrics: metrics, logger: logger}
}

// Ask forwards a question to the agent. Conversation continuity is the
// frontend's concern: an empty conversation id gets a fresh one, which
// the widget echoes back on its next question.
func (s *AdvisorService) Ask(ctx context.Context, req *domain.AdvisorRequest) (*domain.AdvisorResponse, error) {
	ctx, span := advisorTracer.Start(ctx, "AdvisorService.Ask")
	defer span.End()

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, &domain.ErrValidation{Field: "question", Message: "Pergunta é obrigatória"}
	}
	if len(question) > maxQuestionLength {
		return nil, &domain.ErrValidation{Field: "question", Message: "Pergunta muito longa"}
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.New().String()
	}
	span.SetAttributes(attribute.String("conversation.id", conversationID))

	answer, err := s.agent.Ask(ctx, question)
	if err != nil {
		s.metrics.IncrExternalError("advisory_agent")
		s.metrics.IncrAdvisorRequest("error")
		s.logger.Error("advisor question failed",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.IncrAdvisorRequest("success")
	s.metrics.RecordTokens(answer.PromptTokens, answer.CompletionTokens)

	s.logger.Info("advisor question answered",
		zap.String("conversation_id", conversationID),
		zap.Int("prompt_tokens", answer.PromptTokens),
		zap.Int("completion_tokens", answer.CompletionTokens),
	)

	return &domain.AdvisorResponse{
		ConversationID: conversationID,
		Text:           answer.Text,
		Sources:        answer.Sources,
	}, nil
}

// Metrics returns the usage snapshot shown on the admin dashboard.
func (s *AdvisorService) Metrics(ctx context.Context) *domain.AdvisorMetrics {
	_, span := advisorTracer.Start(ctx, "AdvisorService.Metrics")
	defer span.End()

	return s.metrics.GetAdvisorSnapshot()
}
