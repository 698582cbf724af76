package classifier

import (
	"context"
	"errors"
	"log/slog"
)

// Chain tries multiple classifiers in order until one succeeds.
type Chain struct {
	members []Classifier
	logger  *slog.Logger
}

// NewChain creates a classifier chain. At least one classifier is required.
func NewChain(logger *slog.Logger, members ...Classifier) (*Chain, error) {
	if len(members) == 0 {
		return nil, ErrNoClassifiers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		members: members,
		logger:  logger.With("component", "classifier.chain"),
	}, nil
}

// Name implements Classifier.
func (c *Chain) Name() string { return "chain" }

// Classify tries each classifier until one succeeds. The returned error
// joins every member's failure.
func (c *Chain) Classify(ctx context.Context, jpeg []byte) (Label, error) {
	var errs []error
	for i, m := range c.members {
		l, err := m.Classify(ctx, jpeg)
		if err == nil {
			if i > 0 {
				c.logger.Info("fallback classifier succeeded", "classifier", m.Name())
			}
			return l, nil
		}

		errs = append(errs, err)
		c.logger.Warn("classifier failed, trying next", "classifier", m.Name(), "error", err)

		if ctx.Err() != nil {
			return Label{}, ctx.Err()
		}
	}
	return Label{}, errors.Join(errs...)
}
