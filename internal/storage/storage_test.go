package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	QuestionID string `json:"questionId"`
	Value      int    `json:"value"`
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	b, err := OpenBadgerInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	dir := t.TempDir()
	onDisk, err := OpenBadger(dir)
	require.NoError(t, err)
	t.Cleanup(func() { onDisk.Close() })

	return map[string]Backend{
		"memory":        NewMemoryBackend(),
		"badger-memory": b,
		"badger-disk":   onDisk,
	}
}

func TestBackends_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			kv := New(backend)
			in := []record{{QuestionID: "SCI_Q1", Value: 5}, {QuestionID: "SCI_Q2", Value: 3}}
			kv.Save(ctx, "clario_assessment_answers", in)

			var out []record
			require.True(t, kv.Load(ctx, "clario_assessment_answers", &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestBackends_MissingKey(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			kv := New(backend)
			var out []record
			assert.False(t, kv.Load(ctx, "nope", &out))
			assert.Nil(t, out)
		})
	}
}

func TestBackends_ClearAbsentKeyIsNoop(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			kv := New(backend, WithLogger(zerolog.New(&buf)))
			kv.Clear(ctx, "never-written")
			assert.Empty(t, buf.String(), "clearing an absent key should not log")
		})
	}
}

func TestBackends_ClearAndClearAll(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			kv := New(backend)
			kv.Save(ctx, "a", 1)
			kv.Save(ctx, "b", 2)

			kv.Clear(ctx, "a")
			var n int
			assert.False(t, kv.Load(ctx, "a", &n))
			require.True(t, kv.Load(ctx, "b", &n))
			assert.Equal(t, 2, n)

			kv.ClearAll(ctx)
			assert.False(t, kv.Load(ctx, "b", &n))
		})
	}
}

func TestBackends_OverwriteReplacesValue(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			kv := New(backend)
			kv.Save(ctx, "clario_user_name", "Ada")
			kv.Save(ctx, "clario_user_name", "Grace")
			var got string
			require.True(t, kv.Load(ctx, "clario_user_name", &got))
			assert.Equal(t, "Grace", got)
		})
	}
}

func TestLoad_MalformedValueIsAbsent(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Put(ctx, "clario_assessment_answers", []byte("{not json")))

	var buf bytes.Buffer
	kv := New(backend, WithLogger(zerolog.New(&buf)))

	var out []record
	assert.False(t, kv.Load(ctx, "clario_assessment_answers", &out))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "clario_assessment_answers")
}

func TestLoad_WrongShapeIsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := New(NewMemoryBackend())
	kv.Save(ctx, "clario_assessment_complete", "yes")

	var done bool
	assert.False(t, kv.Load(ctx, "clario_assessment_complete", &done))
}

type failingBackend struct{ err error }

func (f failingBackend) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingBackend) Put(context.Context, string, []byte) error         { return f.err }
func (f failingBackend) Delete(context.Context, string) error              { return f.err }
func (f failingBackend) DeleteAll(context.Context) error                   { return f.err }

func TestKV_BackendFailuresAreLoggedNotReturned(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	kv := New(failingBackend{err: errors.New("disk full")}, WithLogger(zerolog.New(&buf)))

	kv.Save(ctx, "k", 1)
	var n int
	assert.False(t, kv.Load(ctx, "k", &n))
	kv.Clear(ctx, "k")
	kv.ClearAll(ctx)

	out := buf.String()
	assert.Contains(t, out, "disk full")
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, "save value")
	assert.Contains(t, out, "clear all values")
}

func TestKV_UnencodableValueIsLogged(t *testing.T) {
	var buf bytes.Buffer
	backend := NewMemoryBackend()
	kv := New(backend, WithLogger(zerolog.New(&buf)))

	kv.Save(context.Background(), "fn", func() {})
	assert.Contains(t, buf.String(), "encode value")
	assert.Empty(t, backend.Keys())
}

func TestMemoryBackend_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	in := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", in))
	in[0] = 'z'

	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))

	got[0] = 'y'
	again, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestBadger_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := OpenBadger(dir)
	require.NoError(t, err)
	New(b).Save(ctx, "clario_user_stream", "Arts")
	require.NoError(t, b.Close())

	b, err = OpenBadger(dir)
	require.NoError(t, err)
	defer b.Close()

	var stream string
	require.True(t, New(b).Load(ctx, "clario_user_stream", &stream))
	assert.Equal(t, "Arts", stream)
}
