package oracle

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/prompts"
	"golang.org/x/time/rate"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/pkg/registry"
)

const (
	defaultBaseBackoff = 100 * time.Millisecond
	defaultTimeout     = 30 * time.Second
)

// LLMConfig configures an OpenAI-compatible chat endpoint.
type LLMConfig struct {
	BaseURL           string
	APIKey            string
	Model             string
	Temperature       float64
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
	Burst             int
}

// LLM renders a task's template and sends it to a language model.
type LLM struct {
	model       llms.Model
	temperature float64
	timeout     time.Duration
	maxRetries  int
	limiter     *rate.Limiter
	logger      logger.Logger
}

// NewLLM connects to an OpenAI-compatible endpoint such as a local Ollama.
func NewLLM(cfg LLMConfig, log logger.Logger) (*LLM, error) {
	opts := []openai.Option{
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	return NewLLMWithModel(model, cfg, log), nil
}

// NewLLMWithModel wraps an existing langchaingo model.
func NewLLMWithModel(model llms.Model, cfg LLMConfig, log logger.Logger) *LLM {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &LLM{
		model:       model,
		temperature: cfg.Temperature,
		timeout:     timeout,
		maxRetries:  cfg.MaxRetries,
		limiter:     rate.NewLimiter(limit, burst),
		logger:      log.WithFields(map[string]interface{}{"component": "llm-oracle"}),
	}
}

// Render fills the task template with the message text.
func Render(task registry.Task, text string) (string, error) {
	tmpl := prompts.NewPromptTemplate(task.Template, []string{registry.TemplateVariable})
	return tmpl.Format(map[string]any{registry.TemplateVariable: text})
}

func (l *LLM) Extract(ctx context.Context, task registry.Task, text string) (string, error) {
	prompt, err := Render(task, text)
	if err != nil {
		return "", apperrors.NewTaskRegistryInvalidError(fmt.Sprintf("task %s: %v", task.Name, err))
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.limiter.Wait(ctx); err != nil {
		return "", l.classify(task, fmt.Errorf("rate limiter error: %w", err))
	}

	var lastErr error
	for attempt := 0; attempt <= l.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := defaultBaseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", l.classify(task, ctx.Err())
			}
		}

		answer, err := llms.GenerateFromSinglePrompt(ctx, l.model, prompt, llms.WithTemperature(l.temperature))
		if err == nil {
			return answer, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		l.logger.Debug("Oracle call failed", map[string]interface{}{
			"task":    task.Name,
			"attempt": attempt + 1,
			"error":   err,
		})
	}

	return "", l.classify(task, lastErr)
}

func (l *LLM) classify(task registry.Task, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewOracleTimeoutError(task.Name, err)
	}
	return apperrors.NewOracleUnavailableError(task.Name, err)
}
