// Package registry maps case-insensitive names and typed enums to
// constructors for one family of parametrizations.
package registry

import (
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/danielpatrickdp/eloss/internal/errs"
)

// Registry manages the constructors of one family. It is populated before
// use and read concurrently afterwards.
type Registry[E comparable, C any] struct {
	family string

	mu         sync.RWMutex
	byName     map[string]C
	byEnum     map[E]C
	nameToEnum map[string]E
	enumToName map[E]string
}

// New creates an empty registry for family.
func New[E comparable, C any](family string) *Registry[E, C] {
	return &Registry[E, C]{
		family:     family,
		byName:     make(map[string]C),
		byEnum:     make(map[E]C),
		nameToEnum: make(map[string]E),
		enumToName: make(map[E]string),
	}
}

// Family returns the family name used in error messages.
func (r *Registry[E, C]) Family() string {
	return r.family
}

// Register adds a constructor under name and enum. Both must be unused.
func (r *Registry[E, C]) Register(name string, enum E, ctor C) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return errs.Configuration("registry.Register", "%s: empty name", r.family)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[key]; exists {
		return errs.Configuration("registry.Register", "%s %q already registered", r.family, name)
	}
	if _, exists := r.byEnum[enum]; exists {
		return errs.Configuration("registry.Register", "%s enum %v already registered", r.family, enum)
	}
	r.byName[key] = ctor
	r.byEnum[enum] = ctor
	r.nameToEnum[key] = enum
	r.enumToName[enum] = key
	return nil
}

// MustRegister is Register for static tables; it panics on conflict.
func (r *Registry[E, C]) MustRegister(name string, enum E, ctor C) {
	if err := r.Register(name, enum, ctor); err != nil {
		panic(err)
	}
}

// Lookup returns the constructor registered under name, ignoring case.
func (r *Registry[E, C]) Lookup(name string) (C, error) {
	r.mu.RLock()
	ctor, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	r.mu.RUnlock()
	if !ok {
		return ctor, r.miss("registry.Lookup", "%s %q not registered", r.family, name)
	}
	return ctor, nil
}

// LookupEnum returns the constructor registered under enum.
func (r *Registry[E, C]) LookupEnum(enum E) (C, error) {
	r.mu.RLock()
	ctor, ok := r.byEnum[enum]
	r.mu.RUnlock()
	if !ok {
		return ctor, r.miss("registry.LookupEnum", "%s enum %v not registered", r.family, enum)
	}
	return ctor, nil
}

// EnumFromString converts a name to its enum.
func (r *Registry[E, C]) EnumFromString(name string) (E, error) {
	r.mu.RLock()
	enum, ok := r.nameToEnum[strings.ToLower(strings.TrimSpace(name))]
	r.mu.RUnlock()
	if !ok {
		return enum, r.miss("registry.EnumFromString", "%s %q not registered", r.family, name)
	}
	return enum, nil
}

// StringFromEnum converts an enum to its lowercase name.
func (r *Registry[E, C]) StringFromEnum(enum E) (string, error) {
	r.mu.RLock()
	name, ok := r.enumToName[enum]
	r.mu.RUnlock()
	if !ok {
		return "", r.miss("registry.StringFromEnum", "%s enum %v not registered", r.family, enum)
	}
	return name, nil
}

// Names returns the registered names, sorted.
func (r *Registry[E, C]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byName))
	for k := range r.byName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// miss logs and returns a configuration error. Callers must not use the
// zero value returned alongside it.
func (r *Registry[E, C]) miss(op, format string, args ...any) error {
	err := errs.Configuration(op, format, args...)
	log.Printf("%v", err)
	return err
}
