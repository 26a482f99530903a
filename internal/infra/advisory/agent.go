// Package advisory holds the client for the external generative agent that
// answers the site's free-text financial questions.
package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/portaldomei/mei-portal-go/internal/domain"
	"github.com/portaldomei/mei-portal-go/internal/infra/resilience"
)

var tracer = otel.Tracer("advisory")

// AgentClient calls the generative advisory service.
type AgentClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewAgentClient creates a new AgentClient.
func NewAgentClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *AgentClient {
	return &AgentClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
	}
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Text    string `json:"text"`
	Sources []struct {
		Title string `json:"title"`
		URI   string `json:"uri"`
	} `json:"sources"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Ask sends the question to the agent and returns its answer.
func (c *AgentClient) Ask(ctx context.Context, question string) (*domain.AgentAnswer, error) {
	ctx, span := tracer.Start(ctx, "AgentClient.Ask")
	defer span.End()
	span.SetAttributes(attribute.Int("question.length", len(question)))

	var agentResp askResponse

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := json.Marshal(askRequest{Question: question})
			if err != nil {
				return err
			}

			url := fmt.Sprintf("%s/v1/ask", c.baseURL)
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			httpReq.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("advisory agent returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&agentResp)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &agentResp, nil
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "advisory_agent", Err: err}
	}

	raw := result.(*askResponse)
	answer := &domain.AgentAnswer{
		Text:             raw.Text,
		PromptTokens:     raw.Usage.PromptTokens,
		CompletionTokens: raw.Usage.CompletionTokens,
	}
	for _, s := range raw.Sources {
		answer.Sources = append(answer.Sources, domain.AdvisorSource{Title: s.Title, URI: s.URI})
	}
	return answer, nil
}
