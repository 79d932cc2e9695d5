package ports

import (
	"context"
	"time"

	"hacplanner/domain/core"
	"hacplanner/domain/task"
)

// GenerateRequest specifies one external generation call. The call is the
// only suspension point in plan execution: it is bounded by Timeout and is
// expected to fail with a typed error, never by hanging.
type GenerateRequest struct {
	Prompt   string
	System   string
	Contract task.ResponseContract
	// Schema is the JSON schema the response must satisfy when Contract is
	// ContractJSONSchema.
	Schema  map[string]interface{}
	Timeout time.Duration
}

// Usage reports token accounting from the provider.
type Usage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
}

// Generation is the payload of a successful generation call.
type Generation struct {
	// Text is always populated with the raw response text.
	Text string
	// JSON holds the parsed object when the contract demanded structure.
	JSON       map[string]interface{}
	PromptHash core.PromptHash
	Usage      *Usage
}

// Generator is the external LLM collaborator. Implementations must surface
// core.ErrGenerationTimeout, core.ErrMalformedOutput, and
// core.ErrGenerationTransport as distinguishable errors.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Generation, error)
}
