package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
)

func TestLLMExplainer_Explain(t *testing.T) {
	llm := &mockLLMService{response: "  Both courses teach graph search. They overlap heavily. The third sent"}
	e := NewLLMExplainer(llm, 0)

	got, err := e.Explain(context.Background(), "candidate text", "existing text")
	require.NoError(t, err)
	assert.Equal(t, "Both courses teach graph search. They overlap heavily.", got)

	require.Len(t, llm.messages, 2)
	assert.Equal(t, "system", llm.messages[0].Role)
	assert.Equal(t, explainSystemPrompt, llm.messages[0].Content)
	assert.Equal(t, "user", llm.messages[1].Role)
	assert.Contains(t, llm.messages[1].Content, "Course 1 Description: candidate text\n\n")
	assert.Contains(t, llm.messages[1].Content, "Course 2 Description: existing text\n\n")
	assert.Contains(t, llm.messages[1].Content, "within 250 words")

	assert.Equal(t, 300, llm.opts.MaxTokens)
	assert.Equal(t, []string{"\n\n", "Explanation:"}, llm.opts.StopWords)
}

func TestLLMExplainer_Errors(t *testing.T) {
	_, err := NewLLMExplainer(nil, 10).Explain(context.Background(), "a", "b")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	boom := errors.New("quota exceeded")
	_, err = NewLLMExplainer(&mockLLMService{err: boom}, 10).Explain(context.Background(), "a", "b")
	assert.ErrorIs(t, err, boom)
}

func TestLLMExplainer_ThrottlesWhenRateLimited(t *testing.T) {
	limited := fmt.Errorf("%w: status 429", domain.ErrRateLimited)
	llm := &mockLLMService{response: "unused", failFirst: []error{limited}}
	e := NewLLMExplainer(llm, 0)
	require.Equal(t, rate.Inf, e.limiter.Limit())

	_, err := e.Explain(context.Background(), "a", "b")

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 1, llm.calls, "rejected explanations are not retried")
	assert.InDelta(t, 20.0/60.0, float64(e.limiter.Limit()), 1e-9)

	e.throttle()
	assert.InDelta(t, 10.0/60.0, float64(e.limiter.Limit()), 1e-9)
}

func TestLLMExplainer_ThrottleHasFloor(t *testing.T) {
	e := NewLLMExplainer(&mockLLMService{}, 1)

	e.throttle()
	assert.InDelta(t, 1.0/60.0, float64(e.limiter.Limit()), 1e-9)
}

func TestLLMExplainer_OtherErrorsKeepRate(t *testing.T) {
	llm := &mockLLMService{err: errors.New("model not found")}
	e := NewLLMExplainer(llm, 0)

	_, err := e.Explain(context.Background(), "a", "b")
	require.Error(t, err)
	assert.Equal(t, rate.Inf, e.limiter.Limit())
}

func TestLLMExplainer_RateLimitHonoursContext(t *testing.T) {
	e := NewLLMExplainer(&mockLLMService{response: "Fine."}, 1)
	ctx := context.Background()

	_, err := e.Explain(ctx, "a", "b")
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = e.Explain(cancelled, "a", "b")
	assert.Error(t, err)
}

func TestTrimToSentence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Complete.", "Complete."},
		{"Question?", "Question?"},
		{"Wow!", "Wow!"},
		{"First. Second half", "First."},
		{"no stop at all", "no stop at all"},
		{"v1.2 is cut", "v1."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TrimToSentence(tt.in), tt.in)
	}
}
