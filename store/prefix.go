package store

import (
	"context"
	"encoding/json"
	"strings"
)

// PrefixAdapter namespaces keys under a fixed prefix, letting several
// independent stores share one backend without key collisions.
type PrefixAdapter struct {
	inner  Adapter
	prefix string
}

// NewPrefixAdapter wraps the adapter so every key is stored as prefix+key.
func NewPrefixAdapter(inner Adapter, prefix string) *PrefixAdapter {
	return &PrefixAdapter{inner: inner, prefix: prefix}
}

func (p *PrefixAdapter) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *PrefixAdapter) Set(ctx context.Context, key string, value json.RawMessage) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *PrefixAdapter) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

func (p *PrefixAdapter) Has(ctx context.Context, key string) (bool, error) {
	return p.inner.Has(ctx, p.prefix+key)
}

// Keys returns the keys within this namespace, with the prefix stripped.
func (p *PrefixAdapter) Keys(ctx context.Context) ([]string, error) {
	all, err := p.inner.Keys(ctx)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, k := range all {
		if rest, ok := strings.CutPrefix(k, p.prefix); ok {
			keys = append(keys, rest)
		}
	}
	return keys, nil
}

// Len counts the keys within this namespace.
func (p *PrefixAdapter) Len(ctx context.Context) (int, error) {
	keys, err := p.Keys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Clear removes only the keys within this namespace.
func (p *PrefixAdapter) Clear(ctx context.Context) error {
	keys, err := p.Keys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := p.inner.Delete(ctx, p.prefix+k); err != nil {
			return err
		}
	}
	return nil
}

var _ Adapter = (*PrefixAdapter)(nil)
