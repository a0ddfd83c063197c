// ABOUTME: OpenAI-compatible Generator for tasks, coaching, strategy and execution
// ABOUTME: Uses JSON-schema structured output for tasks and strategy; no retries
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/harper/focusflow/internal/models"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const (
	// DefaultChatModel is the default model for every call
	DefaultChatModel = "gpt-4o-mini"
	// DefaultTemperature matches the creative but focused tone of the coach
	DefaultTemperature = 0.7
	// DefaultTimeout bounds a single model call
	DefaultTimeout = 30 * time.Second
)

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey      string
	BaseURL     string // empty for api.openai.com
	Model       string
	Temperature float32
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:      apiKey,
		Model:       DefaultChatModel,
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
}

// OpenAIClient implements Generator against the chat completions API
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

var _ Generator = (*OpenAIClient)(nil)

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	oc := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		oc.BaseURL = config.BaseURL
	}
	if config.HTTPClient != nil {
		oc.HTTPClient = config.HTTPClient
	}

	model := config.Model
	if model == "" {
		model = DefaultChatModel
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(oc),
		model:       model,
		temperature: config.Temperature,
		timeout:     timeout,
	}, nil
}

// Model returns the configured model name
func (c *OpenAIClient) Model() string {
	return c.model
}

func (c *OpenAIClient) complete(ctx context.Context, messages []openai.ChatCompletionMessage, format *openai.ChatCompletionResponseFormat) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    c.temperature,
		ResponseFormat: format,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// completeJSON asks for a response matching T's JSON schema and decodes it.
func completeJSON[T any](ctx context.Context, c *OpenAIClient, name, system, user string) (T, error) {
	var out T
	schema, err := jsonschema.GenerateSchemaForType(out)
	if err != nil {
		return out, fmt.Errorf("build %s schema: %w", name, err)
	}

	content, err := c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: user},
	}, &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   name,
			Schema: schema,
			Strict: true,
		},
	})
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return out, fmt.Errorf("failed to parse %s JSON: %w", name, err)
	}
	return out, nil
}

// DailyTasks generates today's task list from the profile
func (c *OpenAIClient) DailyTasks(ctx context.Context, profile *models.Profile) (models.Tasks, error) {
	resp, err := completeJSON[dailyTasksResponse](ctx, c, "daily_tasks", dailyTasksPrompt(profile), dailyTasksRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}
	return toTasks(resp.Tasks), nil
}

// CoachReply continues the coach conversation
func (c *OpenAIClient) CoachReply(ctx context.Context, profile *models.Profile, tasks models.Tasks, history []models.ChatMessage, message string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: coachPrompt(profile, tasks),
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == models.RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	reply, err := c.complete(ctx, messages, nil)
	if err != nil {
		return "", fmt.Errorf("coach reply: %w", err)
	}
	return reply, nil
}

// Strategy refines a goal into a SMART goal, milestones, resources and first tasks
func (c *OpenAIClient) Strategy(ctx context.Context, profile *models.Profile, goal string) (*Strategy, error) {
	resp, err := completeJSON[strategyResponse](ctx, c, "goal_strategy", strategyPrompt(goal, profile), strategyRequest(goal))
	if err != nil {
		return nil, fmt.Errorf("failed to generate strategy: %w", err)
	}
	return resp.toStrategy(goal), nil
}

// ExecuteTask asks the model to do the task and returns its markdown output
func (c *OpenAIClient) ExecuteTask(ctx context.Context, profile *models.Profile, task models.Task) (string, error) {
	out, err := c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: executePrompt(task, profile)},
		{Role: openai.ChatMessageRoleUser, Content: executeRequest},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("execute task: %w", err)
	}
	if out == "" {
		return EmptyExecution, nil
	}
	return out, nil
}
