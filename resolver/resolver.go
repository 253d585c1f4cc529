package resolver

import (
	"fmt"

	"github.com/tsawler/pdfreveal/core"
)

// DefaultMaxDepth bounds reference chains and nesting.
const DefaultMaxDepth = 100

// ObjectReader loads the target of an indirect reference.
type ObjectReader interface {
	ResolveReference(ref core.IndirectRef) (core.Object, error)
}

// ObjectResolver replaces indirect references with the objects they point
// to. Cycle tracking lives on the stack of each call, so a resolver is as
// safe for concurrent use as its reader.
type ObjectResolver struct {
	reader   ObjectReader
	maxDepth int
}

// Option configures an ObjectResolver.
type Option func(*ObjectResolver)

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(r *ObjectResolver) { r.maxDepth = depth }
}

// NewResolver returns a resolver reading objects from reader.
func NewResolver(reader ObjectReader, opts ...Option) *ObjectResolver {
	r := &ObjectResolver{reader: reader, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// walk is the state of one resolution. path holds the object numbers
// currently being expanded; a subtree shared by two keys is not a cycle.
type walk struct {
	r    *ObjectResolver
	deep bool
	path map[int]struct{}
}

// Resolve follows obj until it is no longer a reference. Containers are
// returned as they are.
func (r *ObjectResolver) Resolve(obj core.Object) (core.Object, error) {
	w := walk{r: r, path: map[int]struct{}{}}
	return w.object(obj, 0)
}

// ResolveDeep returns a copy of obj with every reference inside it,
// at any depth, replaced. Stream data is shared with the input.
func (r *ObjectResolver) ResolveDeep(obj core.Object) (core.Object, error) {
	w := walk{r: r, deep: true, path: map[int]struct{}{}}
	return w.object(obj, 0)
}

// ResolveDict deep-resolves a dictionary.
func (r *ObjectResolver) ResolveDict(dict core.Dict) (core.Dict, error) {
	out, err := r.ResolveDeep(dict)
	if err != nil {
		return nil, err
	}
	return out.(core.Dict), nil
}

func (w *walk) object(obj core.Object, depth int) (core.Object, error) {
	if depth >= w.r.maxDepth {
		return nil, fmt.Errorf("maximum recursion depth (%d) exceeded", w.r.maxDepth)
	}

	if ref, ok := obj.(core.IndirectRef); ok {
		if _, seen := w.path[ref.Number]; seen {
			return nil, fmt.Errorf("circular reference detected for object %d", ref.Number)
		}
		w.path[ref.Number] = struct{}{}
		defer delete(w.path, ref.Number)

		target, err := w.r.reader.ResolveReference(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve reference %s: %w", ref, err)
		}
		return w.object(target, depth+1)
	}
	if !w.deep {
		return obj, nil
	}

	switch v := obj.(type) {
	case core.Dict:
		return w.dict(v, depth)
	case core.Array:
		out := make(core.Array, len(v))
		for i, elem := range v {
			r, err := w.object(elem, depth+1)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			out[i] = r
		}
		return out, nil
	case *core.Stream:
		dict, err := w.dict(v.Dict, depth)
		if err != nil {
			return nil, fmt.Errorf("stream dictionary: %w", err)
		}
		return &core.Stream{Dict: dict, Data: v.Data}, nil
	}
	return obj, nil
}

func (w *walk) dict(d core.Dict, depth int) (core.Dict, error) {
	out := make(core.Dict, len(d))
	for key, value := range d {
		r, err := w.object(value, depth+1)
		if err != nil {
			return nil, fmt.Errorf("key /%s: %w", key, err)
		}
		out[key] = r
	}
	return out, nil
}
