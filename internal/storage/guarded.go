package storage

import (
	"context"
	"fmt"

	"github.com/testforge/uicore/internal/resilience"
)

// GuardedStore stops uploading once the wrapped store keeps failing, so a
// dead artifact backend costs one fast error per screenshot afterwards
type GuardedStore struct {
	store   ArtifactStore
	breaker *resilience.CircuitBreaker
}

var _ ArtifactStore = (*GuardedStore)(nil)

func NewGuardedStore(store ArtifactStore, breaker *resilience.CircuitBreaker) *GuardedStore {
	return &GuardedStore{store: store, breaker: breaker}
}

func (g *GuardedStore) SaveScreenshot(ctx context.Context, sessionID, name string, data []byte) (string, error) {
	var uri string
	err := g.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		uri, err = g.store.SaveScreenshot(ctx, sessionID, name, data)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("saving screenshot %q: %w", name, err)
	}
	return uri, nil
}
