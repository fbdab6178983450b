package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
	"github.com/custodia-labs/coursecheck/internal/logger"
)

// Ensure LLMExplainer implements the interface.
var _ driven.Explainer = (*LLMExplainer)(nil)

const (
	explainSystemPrompt = "You are a helpful assistant with expertise in higher education."
	explainMaxTokens    = 300

	// throttledRequestsPerMinute is the rate an unlimited explainer drops to
	// once the provider reports throttling.
	throttledRequestsPerMinute = 20
)

// minExplainRate is the floor for adaptive throttling.
var minExplainRate = rate.Every(time.Minute)

// explainStopWords end generation at the first paragraph break or if the
// model starts a second answer.
var explainStopWords = []string{"\n\n", "Explanation:"}

// LLMExplainer asks a language model why two courses overlap.
// Requests are rate limited so a large corpus of near-duplicates does not
// exhaust the provider quota. Each rate-limited response halves the request
// rate for the rest of the run; the rejected explanation is not retried.
type LLMExplainer struct {
	llm     driven.LLMService
	limiter *rate.Limiter
}

// NewLLMExplainer creates an explainer allowing requestsPerMinute calls.
// Zero or negative disables the limit.
func NewLLMExplainer(llm driven.LLMService, requestsPerMinute int) *LLMExplainer {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}
	return &LLMExplainer{
		llm:     llm,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Explain returns a short professor-style account of the overlap.
func (e *LLMExplainer) Explain(ctx context.Context, candidateText, existingText string) (string, error) {
	if e.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	messages := []driven.ChatMessage{
		{Role: "system", Content: explainSystemPrompt},
		{Role: "user", Content: explainPrompt(candidateText, existingText)},
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("explain: %w", err)
	}
	out, err := e.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens: explainMaxTokens,
		StopWords: explainStopWords,
	})
	if errors.Is(err, domain.ErrRateLimited) {
		e.throttle()
	}
	if err != nil {
		return "", fmt.Errorf("explain: %w", err)
	}
	return TrimToSentence(strings.TrimSpace(out)), nil
}

// throttle halves the request rate, bounded below by minExplainRate.
func (e *LLMExplainer) throttle() {
	current := e.limiter.Limit()
	next := current / 2
	if current == rate.Inf {
		next = rate.Every(time.Minute / throttledRequestsPerMinute)
	}
	next = max(next, minExplainRate)
	if next < current {
		e.limiter.SetLimit(next)
		logger.Warn("explain: provider is throttling, slowing to %.1f requests/minute", float64(next)*60)
	}
}

func explainPrompt(a, b string) string {
	return "The following two course descriptions have a high overlap score. " +
		"As a professor, please provide a short explanation on why these courses might be overlapping, " +
		"and if the two courses could be considered mutually exclusive or not, so that a student can have " +
		"them both in their study plan, or not. keeping your explanation within 250 words:\n\n" +
		"Course 1 Description: " + a + "\n\n" +
		"Course 2 Description: " + b + "\n\n" +
		"Explanation:"
}

// TrimToSentence cuts text after its last full stop when it does not
// already end with sentence punctuation. Text with no full stop is
// returned unchanged.
func TrimToSentence(text string) string {
	if text == "" {
		return text
	}
	switch text[len(text)-1] {
	case '.', '!', '?':
		return text
	}
	if i := strings.LastIndexByte(text, '.'); i >= 0 {
		return text[:i+1]
	}
	return text
}
