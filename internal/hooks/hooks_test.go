package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct{ ID string }

func recorder(name string, calls *[]string, err error) HookFunc[record] {
	return HookFunc[record]{
		HookName: name,
		Fn: func(_ context.Context, _ record) error {
			*calls = append(*calls, name)
			return err
		},
	}
}

func TestRegistry_RunsInOrder(t *testing.T) {
	var calls []string
	r := NewRegistry[record]()
	r.Register(recorder("first", &calls, nil))
	r.Register(recorder("second", &calls, nil))

	require.NoError(t, r.RunBeforeDelete(context.Background(), record{ID: "1"}))
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_StopsOnError(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	r := NewRegistry[record]()
	r.Register(recorder("downgrade", &calls, boom))
	r.Register(recorder("never", &calls, nil))

	err := r.RunBeforeDelete(context.Background(), record{ID: "1"})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "downgrade")
	assert.Equal(t, []string{"downgrade"}, calls)
}

func TestRegistry_CanceledContext(t *testing.T) {
	var calls []string
	r := NewRegistry[record]()
	r.Register(recorder("first", &calls, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.RunBeforeDelete(ctx, record{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, calls)
}

func TestRegistry_Empty(t *testing.T) {
	r := NewRegistry[record]()
	assert.NoError(t, r.RunBeforeDelete(context.Background(), record{}))
}
