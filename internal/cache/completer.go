package cache

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/dshills/codecritic/internal/providers"
)

// Completer serves repeated prompts from a Store. Only successful replies
// are stored; failures always reach the provider on the next run.
type Completer struct {
	inner  providers.Completer
	store  *Store
	model    string
	endpoint string
	logger   *zap.Logger
}

// Wrap decorates c. model and endpoint are part of the key because one
// provider name serves many models, and two hosts (two Ollama boxes, say)
// can serve the same model name. An empty endpoint means the provider's
// default.
func Wrap(c providers.Completer, store *Store, model, endpoint string, logger *zap.Logger) *Completer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Completer{inner: c, store: store, model: model, endpoint: endpoint, logger: logger}
}

// Name reports the wrapped provider's name.
func (c *Completer) Name() string { return c.inner.Name() }

// Complete returns the cached reply for an identical request, or calls the
// provider and stores its reply.
func (c *Completer) Complete(ctx context.Context, req providers.CompletionRequest) (providers.Completion, error) {
	key := Key(c.inner.Name(), c.endpoint, c.model,
		strconv.Itoa(req.MaxTokens),
		strconv.FormatFloat(req.Temperature, 'f', -1, 64),
		req.Prompt,
	)
	if reply, ok := c.store.Get(key); ok {
		c.logger.Debug("model reply served from cache", zap.String("key", Hash(key)[:12]))
		return providers.Completion{Content: reply}, nil
	}

	out, err := c.inner.Complete(ctx, req)
	if err != nil || out.Content == "" {
		return out, err
	}
	if err := c.store.Put(key, out.Content); err != nil {
		c.logger.Warn("caching model reply", zap.Error(err))
	}
	return out, nil
}
