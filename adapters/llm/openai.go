package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hacplanner/domain/core"
	"hacplanner/domain/task"
	"hacplanner/internal"
	"hacplanner/ports"
)

// Config holds OpenAI client settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	// Timeout is the default per-call bound; a request-level timeout wins.
	Timeout time.Duration
}

// Client implements ports.Generator against the OpenAI chat completions API.
// Failures surface as the typed generation sentinels so the pipeline can
// classify them without string matching.
type Client struct {
	cfg  Config
	http *http.Client
	log  *internal.Logger
}

// NewClient creates an OpenAI-backed generator.
func NewClient(cfg Config, log *internal.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model               string          `json:"model"`
	Messages            []chatMessage   `json:"messages"`
	Temperature         float64         `json:"temperature,omitempty"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
	ResponseFormat      *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Generate makes one chat completion call honoring the response contract.
func (c *Client) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.Generation, error) {
	timeout := req.Timeout
	if timeout == 0 {
		timeout = c.cfg.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := req.Prompt
	if req.Contract == task.ContractJSONSchema && req.Schema != nil {
		schemaJSON, err := json.Marshal(req.Schema)
		if err == nil {
			prompt = fmt.Sprintf("%s\n\nRespond with a JSON object matching this schema:\n%s", prompt, schemaJSON)
		}
	}

	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: prompt},
		},
		Temperature:         c.cfg.Temperature,
		MaxCompletionTokens: c.cfg.MaxTokens,
	}
	if req.Contract != task.ContractNone {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("chat completion after %v: %w", timeout, core.ErrGenerationTimeout)
		}
		return nil, fmt.Errorf("chat completion: %v: %w", err, core.ErrGenerationTransport)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chat response: %v: %w", err, core.ErrGenerationTransport)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat completion status %d: %s: %w", resp.StatusCode, truncate(string(raw), 300), core.ErrGenerationTransport)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse chat envelope: %v: %w", err, core.ErrMalformedOutput)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("no choices in chat response: %w", core.ErrMalformedOutput)
	}

	content := parsed.Choices[0].Message.Content
	gen := &ports.Generation{
		Text:       content,
		PromptHash: core.NewPromptHash([]byte(req.Prompt)),
		Usage: &ports.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
			Model:            c.cfg.Model,
		},
	}

	if req.Contract != task.ContractNone {
		cleaned := cleanJSONContent(content)
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
			return nil, fmt.Errorf("parse structured content: %v: %w", err, core.ErrMalformedOutput)
		}
		gen.JSON = obj
	}

	if c.log != nil {
		c.log.Debug("chat completion ok in %s (%d tokens)", time.Since(start), parsed.Usage.TotalTokens)
	}
	return gen, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ ports.Generator = (*Client)(nil)
