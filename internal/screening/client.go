package screening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cake-tracker/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const validationInstruction = `You review submissions to an office cake tracker. ` +
	`A person owes cake after forgetting to lock their computer and a colleague reports it. ` +
	`Reply with a JSON object only, exactly {"validName": boolean, "relevant": boolean}. ` +
	`validName is false when the name is not a plausible person's name or nickname ` +
	`(gibberish, insults, whole sentences). relevant is false when the notes are abusive ` +
	`or unrelated to the incident. Empty notes are relevant.`

var errNoResult = errors.New("response contained no result")

// ScreeningError 调用 moderation API 的传输/解析错误，始终按通过处理（fail open）
type ScreeningError struct {
	Check string
	Err   error
}

func (e *ScreeningError) Error() string {
	return fmt.Sprintf("screening %s check failed: %v", e.Check, e.Err)
}

func (e *ScreeningError) Unwrap() error { return e.Err }

type moderationRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged bool `json:"flagged"`
	} `json:"results"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Validation 结构化校验结果
type Validation struct {
	ValidName bool `json:"validName"`
	Relevant  bool `json:"relevant"`
}

// Client OpenAI 兼容 moderation / chat completion API 客户端
type Client struct {
	httpClient      *resty.Client
	moderationModel string
	chatModel       string
	logger          *zap.Logger
}

// NewClient builds a client with bearer auth and no retries.
func NewClient(cfg config.ScreeningConfig, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient:      client,
		moderationModel: cfg.ModerationModel,
		chatModel:       cfg.ChatModel,
		logger:          logger,
	}
}

func submissionText(name, notes string) string {
	return name + "\n" + notes
}

// Flagged submits name and notes as one blob to the moderation endpoint.
func (c *Client) Flagged(ctx context.Context, name, notes string) (bool, error) {
	var out moderationResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(moderationRequest{Model: c.moderationModel, Input: submissionText(name, notes)}).
		SetResult(&out).
		Post("/moderations")
	if err != nil {
		return false, &ScreeningError{Check: "moderation", Err: err}
	}
	if resp.IsError() {
		return false, &ScreeningError{Check: "moderation", Err: fmt.Errorf("unexpected status %d", resp.StatusCode())}
	}
	if len(out.Results) == 0 {
		return false, &ScreeningError{Check: "moderation", Err: errNoResult}
	}

	c.logger.Debug("Moderation check completed", zap.Bool("flagged", out.Results[0].Flagged))
	return out.Results[0].Flagged, nil
}

// Validate asks the chat model for {"validName", "relevant"}. Fields it
// leaves out default to true, and on error both are true.
func (c *Client) Validate(ctx context.Context, name, notes string) (Validation, error) {
	pass := Validation{ValidName: true, Relevant: true}

	var out chatResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: c.chatModel,
			Messages: []chatMessage{
				{Role: "system", Content: validationInstruction},
				{Role: "user", Content: fmt.Sprintf("Name: %s\nNotes: %s", name, notes)},
			},
			ResponseFormat: map[string]string{"type": "json_object"},
			Temperature:    0,
		}).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return pass, &ScreeningError{Check: "validation", Err: err}
	}
	if resp.IsError() {
		return pass, &ScreeningError{Check: "validation", Err: fmt.Errorf("unexpected status %d", resp.StatusCode())}
	}
	if len(out.Choices) == 0 {
		return pass, &ScreeningError{Check: "validation", Err: errNoResult}
	}

	var parsed struct {
		ValidName *bool `json:"validName"`
		Relevant  *bool `json:"relevant"`
	}
	if err := json.Unmarshal([]byte(out.Choices[0].Message.Content), &parsed); err != nil {
		return pass, &ScreeningError{Check: "validation", Err: fmt.Errorf("failed to parse verdict: %w", err)}
	}

	v := pass
	if parsed.ValidName != nil {
		v.ValidName = *parsed.ValidName
	}
	if parsed.Relevant != nil {
		v.Relevant = *parsed.Relevant
	}

	c.logger.Debug("Validation check completed",
		zap.Bool("valid_name", v.ValidName),
		zap.Bool("relevant", v.Relevant),
	)
	return v, nil
}
