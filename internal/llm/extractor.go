// Package llm turns raw page content into structured job fields via a
// completion call with a function-calling contract.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"hireloop/crawler-service/internal/model"
)

// Sentinel errors for completion-service failures the caller may want to
// treat differently from a generic failure.
var (
	ErrRateLimited   = errors.New("completion service rate limited")
	ErrQuotaExceeded = errors.New("completion service quota exhausted")
)

const extractToolName = "extract_job_details"

// Extractor wraps the completion client.
type Extractor struct {
	client *openai.Client
	model  string
}

// NewExtractor constructs an Extractor. baseURL overrides the default API
// endpoint when non-empty (tests, alternative gateways).
func NewExtractor(apiKey, baseURL, model string) *Extractor {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Extractor{client: openai.NewClientWithConfig(cfg), model: model}
}

var extractSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"company_name": {Type: jsonschema.String, Description: "Name of the hiring company"},
		"job_title":    {Type: jsonschema.String, Description: "Title of the position"},
		"location":     {Type: jsonschema.String},
		"job_type": {
			Type: jsonschema.String,
			Enum: []string{"full-time", "part-time", "contract", "freelance"},
		},
		"salary_range":        {Type: jsonschema.String},
		"description":         {Type: jsonschema.String, Description: "Short summary of the role"},
		"requirements":        {Type: jsonschema.String},
		"years_of_experience": {Type: jsonschema.Integer},
	},
	Required: []string{"company_name", "job_title"},
}

// Extract sends page content to the completion service and parses the
// structured tool-call result. promptHint carries per-board guidance (e.g.
// where Hebrew company names tend to appear). Missing or placeholder
// required fields set RequiresCompletion rather than failing the call.
func (e *Extractor) Extract(ctx context.Context, content, promptHint string) (*model.JobDetails, error) {
	system := "You extract structured job posting details from page content. " +
		"Use the extract_job_details function. Leave fields you cannot find empty rather than guessing."
	if promptHint != "" {
		system += " Hint: " + promptHint
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        extractToolName,
				Description: "Record the structured fields of a job posting",
				Parameters:  extractSchema,
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: extractToolName},
		},
	})
	if err != nil {
		return nil, classifyAPIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}
	msg := resp.Choices[0].Message

	var args string
	if len(msg.ToolCalls) > 0 {
		args = msg.ToolCalls[0].Function.Arguments
	} else {
		// The model answered in free text; salvage the first balanced JSON
		// object from the response.
		args = firstJSONObject(msg.Content)
		if args == "" {
			return nil, fmt.Errorf("completion returned no tool call and no JSON content")
		}
	}

	var details model.JobDetails
	if err := json.Unmarshal([]byte(args), &details); err != nil {
		return nil, fmt.Errorf("parse tool-call arguments: %w", err)
	}

	FlagMissingFields(&details)
	return &details, nil
}

// FlagMissingFields marks required fields that are absent, a placeholder, or
// implausibly short. The partial result is still usable — manual intake
// prompts the submitter to fill the gaps.
func FlagMissingFields(d *model.JobDetails) {
	d.MissingFields = nil
	if !usableField(d.CompanyName) {
		d.MissingFields = append(d.MissingFields, "company_name")
	}
	if !usableField(d.JobTitle) {
		d.MissingFields = append(d.MissingFields, "job_title")
	}
	d.RequiresCompletion = len(d.MissingFields) > 0
}

func usableField(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return false
	}
	switch strings.ToLower(s) {
	case "unknown", "n/a", "none":
		return false
	}
	return true
}

// classifyAPIError maps completion-service HTTP statuses onto the sentinel
// errors; anything else passes through wrapped.
func classifyAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		case http.StatusPaymentRequired:
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
	}
	return fmt.Errorf("completion request: %w", err)
}

// firstJSONObject returns the first balanced {...} object in s, or "".
// Braces inside JSON strings are ignored.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
