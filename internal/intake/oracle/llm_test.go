package oracle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/pkg/registry"
)

// ==========================
// Fake model
// ==========================

type fakeModel struct {
	mu      sync.Mutex
	results []fakeResult
	prompts []string
	delay   time.Duration
}

type fakeResult struct {
	answer string
	err    error
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.mu.Lock()
	for _, m := range messages {
		for _, p := range m.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, tc.Text)
			}
		}
	}
	var res fakeResult
	if len(f.results) > 0 {
		res = f.results[0]
		f.results = f.results[1:]
	}
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if res.err != nil {
		return nil, res.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: res.answer}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func creditTask(t *testing.T) registry.Task {
	task, ok := registry.Default().Task(registry.TaskCredit)
	require.True(t, ok)
	return task
}

// ==========================
// Tests
// ==========================

func TestRender(t *testing.T) {
	task := creditTask(t)

	prompt, err := Render(task, "my score is 720")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Text: my score is 720")
	assert.Contains(t, prompt, `{"credit_score": 720, "has_defaults": false, "default_within_12_months": false}`)
	assert.NotContains(t, prompt, "{{")
}

func TestRender_BrokenTemplate(t *testing.T) {
	_, err := Render(registry.Task{Name: "broken", Template: "{{.text"}, "x")
	assert.Error(t, err)
}

func TestLLM_Extract(t *testing.T) {
	tests := []struct {
		name           string
		results        []fakeResult
		maxRetries     int
		validateOutput func(t *testing.T, answer string, err error, model *fakeModel)
	}{
		{
			name:    "first attempt succeeds",
			results: []fakeResult{{answer: `{"credit_score": 720}`}},
			validateOutput: func(t *testing.T, answer string, err error, model *fakeModel) {
				require.NoError(t, err)
				assert.Equal(t, `{"credit_score": 720}`, answer)
				require.Len(t, model.prompts, 1)
				assert.Contains(t, model.prompts[0], "Text: score 720")
			},
		},
		{
			name:       "retries transient failures",
			results:    []fakeResult{{err: errors.New("connection refused")}, {answer: "{}"}},
			maxRetries: 2,
			validateOutput: func(t *testing.T, answer string, err error, model *fakeModel) {
				require.NoError(t, err)
				assert.Equal(t, "{}", answer)
				assert.Len(t, model.prompts, 2)
			},
		},
		{
			name:       "gives up after max retries",
			results:    []fakeResult{{err: errors.New("boom")}, {err: errors.New("boom")}},
			maxRetries: 1,
			validateOutput: func(t *testing.T, answer string, err error, model *fakeModel) {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeOracleUnavailable))
				assert.Empty(t, answer)
				assert.Len(t, model.prompts, 2)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{results: tt.results}
			o := NewLLMWithModel(model, LLMConfig{MaxRetries: tt.maxRetries, Timeout: time.Second}, logger.NewTestLogger(t))

			answer, err := o.Extract(context.Background(), creditTask(t), "score 720")
			tt.validateOutput(t, answer, err, model)
		})
	}
}

func TestLLM_Extract_Timeout(t *testing.T) {
	model := &fakeModel{results: []fakeResult{{answer: "{}"}}, delay: time.Second}
	o := NewLLMWithModel(model, LLMConfig{Timeout: 20 * time.Millisecond}, logger.NewNoOpLogger())

	_, err := o.Extract(context.Background(), creditTask(t), "score 720")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeOracleTimeout))
}

func TestLLM_Extract_BrokenTemplate(t *testing.T) {
	model := &fakeModel{}
	o := NewLLMWithModel(model, LLMConfig{}, logger.NewNoOpLogger())

	_, err := o.Extract(context.Background(), registry.Task{Name: "broken", Template: "{{.text"}, "x")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeTaskRegistryInvalid))
	assert.Empty(t, model.prompts)
}

func TestFunc(t *testing.T) {
	var o Oracle = Func(func(_ context.Context, task registry.Task, text string) (string, error) {
		return task.Name + ":" + text, nil
	})
	answer, err := o.Extract(context.Background(), registry.Task{Name: "credit"}, "hi")
	require.NoError(t, err)
	assert.Equal(t, "credit:hi", answer)
}
