package bank

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Provider resolves the bank once per process and caches the result. A
// failed load is replaced by the builtin bank, and that substitution is
// cached too.
type Provider struct {
	loader Loader
	logger *zap.Logger

	once    sync.Once
	bank    *Bank
	loadErr error
}

type ProviderOption func(*Provider)

func WithLogger(logger *zap.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProvider wraps loader. A nil loader means the builtin bank is used.
func NewProvider(loader Loader, opts ...ProviderOption) *Provider {
	p := &Provider{loader: loader, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Static is a provider that always yields b.
func Static(b *Bank) *Provider {
	return NewProvider(LoaderFunc(func(context.Context) (*Bank, error) { return b, nil }))
}

// Get never fails.
func (p *Provider) Get(ctx context.Context) *Bank {
	p.once.Do(func() {
		// Cached for the process: a cancelled first caller must not pin the
		// builtin bank. Loaders carry their own timeouts.
		p.bank, p.loadErr = p.resolve(context.WithoutCancel(ctx))
	})
	return p.bank
}

func (p *Provider) resolve(ctx context.Context) (b *Bank, err error) {
	if p.loader == nil {
		p.logger.Info("using builtin intent bank")
		return Builtin(), nil
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("intent bank loader panicked, using builtin bank", zap.Any("panic", r))
			b, err = Builtin(), fmt.Errorf("intent bank loader panicked: %v", r)
		}
	}()
	loaded, err := p.loader.Load(ctx)
	if err != nil || loaded == nil {
		p.logger.Warn("intent bank unavailable, using builtin bank", zap.Error(err))
		return Builtin(), err
	}
	p.logger.Info("intent bank loaded",
		zap.String("source", loaded.Source()),
		zap.Int("intents", len(loaded.ordered)+1),
	)
	return loaded, nil
}

// Source reports where the cached bank came from, resolving it if needed.
func (p *Provider) Source(ctx context.Context) string {
	return p.Get(ctx).Source()
}

// LoadError is the failure that caused the builtin bank to be used, if any.
func (p *Provider) LoadError(ctx context.Context) error {
	p.Get(ctx)
	return p.loadErr
}
