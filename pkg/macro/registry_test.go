package macro

import (
	"context"
	"sync"
	"testing"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	assert.Equal(t, []string{SurrogateKeyName, StarName}, r.Names())

	for _, name := range []string{"star", "Star", "STAR", "generate_surrogate_key__sha_256"} {
		m, ok := r.Lookup(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, m.Doc)
	}

	_, ok := r.Lookup("nope")
	assert.False(t, ok)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, SurrogateKeyName, list[0].Name)
	assert.Equal(t, "GENERATE_SURROGATE_KEY__SHA_256(*fields any)", list[0].Usage())
}

func TestRegistry_Register(t *testing.T) {
	noop := func(context.Context, *Env, *Args) ([]core.Expr, error) { return nil, nil }

	r := NewRegistry()
	require.NoError(t, r.Register(&Macro{Name: "custom", Fn: noop}))
	_, ok := r.Lookup("CUSTOM")
	assert.True(t, ok)

	err := r.Register(&Macro{Name: "Custom", Fn: noop})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	require.Error(t, r.Register(&Macro{Name: "", Fn: noop}))
	require.Error(t, r.Register(&Macro{Name: "x"}))

	err = r.Register(&Macro{
		Name:      "bad",
		Fn:        noop,
		Signature: Signature{{Name: "rest", Kinds: KindAny, Variadic: true}, {Name: "after", Kinds: KindAny}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variadic")
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := Default()
	noop := func(context.Context, *Env, *Args) ([]core.Expr, error) { return nil, nil }

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = r.Register(&Macro{Name: "m" + string(rune('a'+i)), Fn: noop})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = r.Lookup(StarName)
			_ = r.List()
		}()
	}
	wg.Wait()

	assert.Len(t, r.Names(), 10)
}
