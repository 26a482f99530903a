package domain

// AdvisorRequest is the advisory chat widget's question.
type AdvisorRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversationId,omitempty"`
}

// AdvisorSource is one grounding reference returned by the agent.
type AdvisorSource struct {
	Title string `json:"title,omitempty"`
	URI   string `json:"uri"`
}

// AdvisorResponse is the answer shown in the chat widget.
type AdvisorResponse struct {
	ConversationID string          `json:"conversationId"`
	Text           string          `json:"text"`
	Sources        []AdvisorSource `json:"sources,omitempty"`
}

// AgentAnswer is the raw reply from the external generative agent.
type AgentAnswer struct {
	Text             string          `json:"text"`
	Sources          []AdvisorSource `json:"sources,omitempty"`
	PromptTokens     int             `json:"promptTokens"`
	CompletionTokens int             `json:"completionTokens"`
}

// AdvisorMetrics is the snapshot served by GET /v1/metrics/advisor.
type AdvisorMetrics struct {
	TotalRequests       int64   `json:"totalRequests"`
	ErrorRate           float64 `json:"errorRate"`
	AvgTokensPerRequest float64 `json:"avgTokensPerRequest"`
	CacheHitRate        float64 `json:"cacheHitRate"`
	Period              string  `json:"period"`
}
