package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/teachback/internal/utils"
)

// Chain tries an ordered list of backends until one completes. The first
// handle is the primary; everything after it is a fallback. A timeout or
// empty completion counts as a backend failure.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	log       *logrus.Logger
}

func NewChain(log *logrus.Logger, timeout time.Duration, providers ...Provider) *Chain {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Chain{providers: providers, timeout: timeout, log: log}
}

// Complete collects a full answer from the first backend that succeeds.
// When every backend fails it returns ALL_LLMS_FAILED with the per-backend
// causes wrapped inside.
func (c *Chain) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteValidated(ctx, prompt, nil)
}

// CompleteValidated additionally runs accept over each completion; a
// rejected answer counts as a backend failure and moves the chain to the
// next handle, so malformed role output triggers failover like any timeout.
func (c *Chain) CompleteValidated(ctx context.Context, prompt string, accept func(string) error) (string, error) {
	const op = "llm.Chain.Complete"

	if len(c.providers) == 0 {
		return "", utils.E(utils.CodeAllLLMsFailed, op, "no backends configured", nil)
	}

	var causes []error
	for i, p := range c.providers {
		answer, err := c.completeOne(ctx, p, prompt)
		if err == nil && accept != nil {
			err = accept(answer)
		}
		if err == nil {
			if i > 0 && c.log != nil {
				c.log.WithFields(logrus.Fields{
					"backend": p.Name(),
					"rank":    i,
				}).Warn("llm fallback served request")
			}
			return answer, nil
		}

		code := utils.CodePrimaryLLMFailed
		if i > 0 {
			code = utils.CodeFallbackLLMFailed
		}
		causes = append(causes, utils.E(code, op, p.Name()+" failed", err))

		if c.log != nil {
			c.log.WithError(err).WithField("backend", p.Name()).Error("llm backend failed")
		}
		if ctx.Err() != nil {
			break
		}
	}

	return "", utils.E(utils.CodeAllLLMsFailed, op, "all llm backends failed", errors.Join(causes...))
}

func (c *Chain) completeOne(ctx context.Context, p Provider, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	chunks, errs := p.StreamAnswer(ctx, prompt)

	var full strings.Builder
	for chunk := range chunks {
		full.WriteString(chunk)
	}

	select {
	case err, ok := <-errs:
		if ok && err != nil {
			return "", err
		}
	default:
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	answer := strings.TrimSpace(full.String())
	if answer == "" {
		return "", errors.New("empty completion")
	}
	return answer, nil
}

func (c *Chain) Close() error {
	var errs []error
	for _, p := range c.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
