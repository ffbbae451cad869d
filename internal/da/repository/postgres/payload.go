package postgres

import (
	"context"
	"fmt"
)

// DefaultInlineThreshold is the largest payload kept in the blobs table when an object store is set.
const DefaultInlineThreshold = 1 << 20

// Option configures a repository.
type Option func(*payloads)

// WithObjectStore moves payloads larger than threshold bytes to store.
// A non-positive threshold selects DefaultInlineThreshold.
func WithObjectStore(store ObjectStore, threshold int) Option {
	return func(p *payloads) {
		p.objects = store
		p.threshold = threshold
		if p.threshold <= 0 {
			p.threshold = DefaultInlineThreshold
		}
	}
}

type payloads struct {
	objects   ObjectStore
	threshold int
}

func newPayloads(opts []Option) payloads {
	p := payloads{threshold: DefaultInlineThreshold}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// store returns the column values for a payload: inline data, or a key into the object store.
// Keys are derived from the blob identity so a retried upload overwrites the same object.
func (p payloads) store(ctx context.Context, key string, data []byte) ([]byte, *string, error) {
	if p.objects == nil || len(data) <= p.threshold {
		if data == nil {
			data = []byte{}
		}
		return data, nil, nil
	}
	if err := p.objects.Put(ctx, key, data); err != nil {
		return nil, nil, fmt.Errorf("offload payload %s: %w", key, err)
	}
	return nil, &key, nil
}

func (p payloads) load(ctx context.Context, data []byte, objectKey *string) ([]byte, error) {
	if objectKey == nil {
		return data, nil
	}
	if p.objects == nil {
		return nil, fmt.Errorf("payload %s is offloaded but no object store is configured", *objectKey)
	}
	data, err := p.objects.Get(ctx, *objectKey)
	if err != nil {
		return nil, fmt.Errorf("load payload %s: %w", *objectKey, err)
	}
	return data, nil
}
