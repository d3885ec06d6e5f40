package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/leapstack-labs/leapmacro/pkg/dialect"
)

// Resolver maps a relation to its ordered column types.
// Implementations return *ResolutionError when the relation cannot be resolved.
type Resolver interface {
	ColumnsFor(ctx context.Context, table *core.TableName) (*ColumnTypeMap, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, table *core.TableName) (*ColumnTypeMap, error)

// ColumnsFor calls f.
func (f ResolverFunc) ColumnsFor(ctx context.Context, table *core.TableName) (*ColumnTypeMap, error) {
	return f(ctx, table)
}

// MappingResolver resolves relations from an in-memory mapping.
// Table and column names are normalized with the dialect when added and
// when looked up. It is safe for concurrent use.
type MappingResolver struct {
	dialect *dialect.Dialect

	mu     sync.RWMutex
	tables map[string]*ColumnTypeMap
}

// NewMappingResolver creates an empty resolver. A nil dialect disables normalization.
func NewMappingResolver(d *dialect.Dialect) *MappingResolver {
	return &MappingResolver{
		dialect: d,
		tables:  make(map[string]*ColumnTypeMap),
	}
}

// Add registers the columns of a relation given as a dotted path.
func (r *MappingResolver) Add(relation string, cols *ColumnTypeMap) {
	normalized := NewColumnTypeMap()
	for _, name := range cols.Names() {
		typ, _ := cols.Get(name)
		normalized.Set(r.normalize(name), typ)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[r.key(core.Table(relation))] = normalized
}

// Relations returns the registered relation keys, sorted.
func (r *MappingResolver) Relations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.tables))
	for k := range r.tables {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ColumnsFor looks the relation up by its qualified name. A relation given
// without a schema also matches a single registered relation with the same
// table name.
func (r *MappingResolver) ColumnsFor(_ context.Context, table *core.TableName) (*ColumnTypeMap, error) {
	if table == nil || table.Name == "" {
		return nil, &ResolutionError{Relation: "", Err: errors.New("relation name is empty")}
	}

	key := r.key(table)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if cols, ok := r.tables[key]; ok {
		return cols.Clone(), nil
	}

	// Suffix match: "foo" finds "main.foo" when unambiguous.
	var (
		match *ColumnTypeMap
		names []string
	)
	for k, cols := range r.tables {
		if strings.HasSuffix(k, "."+key) {
			match = cols
			names = append(names, k)
		}
	}
	switch len(names) {
	case 0:
		return nil, NotFound(table.QualifiedName())
	case 1:
		return match.Clone(), nil
	default:
		sort.Strings(names)
		return nil, &ResolutionError{
			Relation: table.QualifiedName(),
			Err:      fmt.Errorf("ambiguous relation, candidates: %s", strings.Join(names, ", ")),
		}
	}
}

func (r *MappingResolver) key(t *core.TableName) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Catalog, t.Schema, t.Name} {
		if p == "" {
			continue
		}
		if t.Quoted || r.dialect == nil {
			parts = append(parts, p)
		} else {
			parts = append(parts, r.dialect.NormalizeName(p))
		}
	}
	return strings.Join(parts, ".")
}

func (r *MappingResolver) normalize(name string) string {
	if r.dialect == nil {
		return name
	}
	return r.dialect.NormalizeName(name)
}

// Chain tries each resolver in order, moving to the next one only when a
// resolver reports ErrRelationNotFound. Any other error is returned as is.
func Chain(resolvers ...Resolver) Resolver {
	return ResolverFunc(func(ctx context.Context, table *core.TableName) (*ColumnTypeMap, error) {
		var lastErr error = NotFound(table.QualifiedName())
		for _, r := range resolvers {
			if r == nil {
				continue
			}
			cols, err := r.ColumnsFor(ctx, table)
			if err == nil {
				return cols, nil
			}
			if !errors.Is(err, ErrRelationNotFound) {
				return nil, err
			}
			lastErr = err
		}
		return nil, lastErr
	})
}
