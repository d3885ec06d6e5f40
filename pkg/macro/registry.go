package macro

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/dialect"
	"github.com/leapstack-labs/leapmacro/pkg/schema"
)

// Env carries the collaborators a macro body may use.
type Env struct {
	Dialect  *dialect.Dialect
	Resolver schema.Resolver
	Logger   *slog.Logger
}

// Func is a macro body. It receives arguments already bound and checked
// against the macro's Signature.
type Func func(ctx context.Context, env *Env, args *Args) ([]core.Expr, error)

// Macro is a named, callable macro.
type Macro struct {
	Name      string
	Doc       string
	Signature Signature
	Fn        Func
}

// Usage renders the call form, e.g. "STAR(relation table|column|identifier, ...)".
func (m *Macro) Usage() string {
	return m.Name + "(" + m.Signature.String() + ")"
}

// Registry maps macro names to macros. Names are case-insensitive.
// A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	macros map[string]*Macro
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{macros: make(map[string]*Macro)}
}

// Default returns a new registry holding the built-in macros.
func Default() *Registry {
	r := NewRegistry()
	for _, m := range builtins() {
		if err := r.Register(m); err != nil {
			panic(err)
		}
	}
	return r
}

func builtins() []*Macro {
	return []*Macro{
		{
			Name:      SurrogateKeyName,
			Doc:       "Deterministic SHA-256 key over the given expressions; NULLs are replaced by a sentinel.",
			Signature: surrogateKeySignature,
			Fn:        surrogateKeyMacro,
		},
		{
			Name:      StarName,
			Doc:       "Expands a relation into an explicit, typed projection list.",
			Signature: starSignature,
			Fn:        starMacro,
		},
	}
}

// Register adds a macro. Registering a name twice is an error.
func (r *Registry) Register(m *Macro) error {
	if m.Name == "" || m.Fn == nil {
		return fmt.Errorf("macro must have a name and a body")
	}
	for i, p := range m.Signature {
		if p.Variadic && i != len(m.Signature)-1 {
			return fmt.Errorf("macro %s: only the last parameter may be variadic", m.Name)
		}
	}

	key := strings.ToUpper(m.Name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.macros[key]; exists {
		return fmt.Errorf("macro %s is already registered", key)
	}
	r.macros[key] = m
	return nil
}

// Lookup returns the macro registered under name.
func (r *Registry) Lookup(name string) (*Macro, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.macros[strings.ToUpper(name)]
	return m, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.macros))
	for name := range r.macros {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the registered macros sorted by name.
func (r *Registry) List() []*Macro {
	names := r.Names()
	out := make([]*Macro, 0, len(names))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range names {
		if m, ok := r.macros[name]; ok {
			out = append(out, m)
		}
	}
	return out
}
