package llm

import (
	"context"
	"errors"
	"time"

	"github.com/yungbote/neurobots-backend/internal/observability"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
	"github.com/yungbote/neurobots-backend/internal/platform/retry"
)

type retryingClient struct {
	next     Client
	provider string
	policy   retry.Policy
	log      *logger.Logger
}

// WithRetry retries rate-limited calls under policy and fails fast on every
// other error. The policy's classifier is always replaced by IsRateLimited.
func WithRetry(next Client, provider string, policy retry.Policy, log *logger.Logger) Client {
	if log == nil {
		log = logger.Nop()
	}
	if policy.MaxAttempts == 0 {
		def := retry.DefaultPolicy()
		def.Sleep = policy.Sleep
		policy = def
	}
	policy.Retryable = IsRateLimited
	return &retryingClient{
		next:     next,
		provider: provider,
		policy:   policy,
		log:      log.With("service", "GenerationBackend", "provider", provider),
	}
}

func (c *retryingClient) GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error) {
	p := c.policy
	p.OnRetry = func(attempt int, delay time.Duration, err error) {
		observability.Current().IncLLMRetry(c.provider)
		c.log.Warn("generation backend rate limited, retrying",
			"attempt", attempt,
			"max_attempts", p.MaxAttempts,
			"sleep", delay.String(),
			"error", err.Error(),
		)
	}

	out, err := retry.Do(ctx, p, func(ctx context.Context) (string, error) {
		start := time.Now()
		c.log.Debug("generation request", "prompt_chars", len(prompt), "system_chars", len(systemInstruction))
		text, err := c.next.GenerateText(ctx, prompt, systemInstruction)
		observability.Current().ObserveLLMRequest(c.provider, outcomeLabel(err), time.Since(start))
		return text, err
	})
	if err == nil {
		return out, nil
	}

	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		return "", &GenerationError{
			Provider: c.provider,
			Kind:     KindExhausted,
			Attempts: exhausted.Attempts,
			Err:      exhausted.Err,
		}
	}
	if ctx.Err() != nil {
		return "", err
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return "", err
	}
	return "", classify(c.provider, 0, err)
}

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return string(ge.Kind)
	}
	if IsRateLimited(err) {
		return string(KindRateLimited)
	}
	return "error"
}
