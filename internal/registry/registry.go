package registry

import (
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Registry keeps one declaration per translatable Go type.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*Model
	byName map[string]*Model
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]*Model),
		byName: make(map[string]*Model),
	}
}

// Translates registers a declaration for owner.Type. When the type already
// has a declaration the existing model is returned unchanged and created is
// false; the attributes and options of the repeated call are ignored. A
// name already used by a different type is rejected with
// *DuplicateModelError.
func (r *Registry) Translates(owner Owner, attributes []string, opts ...Option) (model *Model, created bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.lookupLocked(owner); existing != nil {
		return existing, false, nil
	}
	if taken, ok := r.byName[strings.TrimSpace(owner.Name)]; ok {
		return nil, false, &DuplicateModelError{Name: taken.Name(), Existing: taken.Type(), Type: owner.Type}
	}

	model, err = NewModel(owner, attributes, opts...)
	if err != nil {
		return nil, false, err
	}
	if owner.Type != nil {
		r.byType[owner.Type] = model
	}
	r.byName[model.Name()] = model
	return model, true, nil
}

func (r *Registry) lookupLocked(owner Owner) *Model {
	if owner.Type != nil {
		return r.byType[owner.Type]
	}
	return r.byName[strings.TrimSpace(owner.Name)]
}

// Lookup returns the declaration for typ.
func (r *Registry) Lookup(typ reflect.Type) (*Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if model, ok := r.byType[typ]; ok {
		return model, nil
	}
	return nil, ErrModelNotTranslatable
}

// LookupName returns the declaration registered under name.
func (r *Registry) LookupName(name string) (*Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if model, ok := r.byName[name]; ok {
		return model, nil
	}
	return nil, ErrModelNotTranslatable
}

// Translatable reports whether typ has a declaration.
func (r *Registry) Translatable(typ reflect.Type) bool {
	_, err := r.Lookup(typ)
	return err == nil
}

// Models lists the registered declarations sorted by name.
func (r *Registry) Models() []*Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Model, 0, len(r.byName))
	for _, model := range r.byName {
		out = append(out, model)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
