// Package storage is the key-value persistence collaborator used by the
// assessment session. Values are JSON encoded; read and write failures are
// logged and never returned to callers.
package storage

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Storage persists JSON-encodable values under string keys.
type Storage interface {
	// Save encodes value and stores it under key. Failures are logged.
	Save(ctx context.Context, key string, value any)

	// Load decodes the value under key into dst. It reports false when the
	// key is absent or its value cannot be decoded.
	Load(ctx context.Context, key string, dst any) bool

	// Clear removes key. Clearing an absent key is a no-op.
	Clear(ctx context.Context, key string)

	// ClearAll removes every key.
	ClearAll(ctx context.Context)
}

// Backend is the raw byte store underneath a Storage.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	DeleteAll(ctx context.Context) error
}

// KV adapts a Backend to the Storage contract.
type KV struct {
	backend Backend
	log     zerolog.Logger
}

// Option configures a KV.
type Option func(*KV)

// WithLogger sets the logger used to report swallowed failures.
func WithLogger(log zerolog.Logger) Option {
	return func(kv *KV) { kv.log = log }
}

// New wraps backend. Without WithLogger failures are discarded.
func New(backend Backend, opts ...Option) *KV {
	kv := &KV{backend: backend, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(kv)
	}
	return kv
}

// Save implements Storage.
func (kv *KV) Save(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		kv.log.Error().Err(err).Str("key", key).Msg("encode value")
		return
	}
	if err := kv.backend.Put(ctx, key, data); err != nil {
		kv.log.Error().Err(err).Str("key", key).Msg("save value")
	}
}

// Load implements Storage.
func (kv *KV) Load(ctx context.Context, key string, dst any) bool {
	data, ok, err := kv.backend.Get(ctx, key)
	if err != nil {
		kv.log.Error().Err(err).Str("key", key).Msg("load value")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		kv.log.Warn().Err(err).Str("key", key).Msg("discarding malformed value")
		return false
	}
	return true
}

// Clear implements Storage.
func (kv *KV) Clear(ctx context.Context, key string) {
	if err := kv.backend.Delete(ctx, key); err != nil {
		kv.log.Error().Err(err).Str("key", key).Msg("clear value")
	}
}

// ClearAll implements Storage.
func (kv *KV) ClearAll(ctx context.Context) {
	if err := kv.backend.DeleteAll(ctx); err != nil {
		kv.log.Error().Err(err).Msg("clear all values")
	}
}
