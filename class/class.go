package class

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cynecx/objc2"
)

// Class is a foreign class object. The zero value means "no class".
type Class objc2.Pointer

// Pointer returns the class object's address.
func (c Class) Pointer() objc2.Pointer {
	return objc2.Pointer(c)
}

// Valid reports whether the class resolved to an object.
func (c Class) Valid() bool {
	return c != 0
}

// Loader resolves class names against a foreign runtime.
type Loader interface {
	LookupClass(name string) (objc2.Pointer, error)
}

// Named is implemented by binding types that represent a specific
// foreign class.
type Named interface {
	objc2.Object
	ClassName() string
}

// Registry caches class lookups. Safe for concurrent use.
type Registry struct {
	loader Loader
	mu     sync.RWMutex
	cache  map[string]Class
}

// NewRegistry creates a registry resolving through the given loader.
func NewRegistry(loader Loader) *Registry {
	return &Registry{
		loader: loader,
		cache:  make(map[string]Class),
	}
}

// Get resolves a class by name, consulting the cache first.
func (r *Registry) Get(name string) (Class, error) {
	r.mu.RLock()
	cls, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return cls, nil
	}

	ptr, err := r.loader.LookupClass(name)
	if err != nil {
		return 0, err
	}
	cls = Class(ptr)

	r.mu.Lock()
	r.cache[name] = cls
	r.mu.Unlock()

	Logger().Debug("class resolved", zap.String("name", name))
	return cls, nil
}

// MustGet is Get but panics on failure. Use for classes the program
// cannot run without, typically at startup.
func (r *Registry) MustGet(name string) Class {
	cls, err := r.Get(name)
	if err != nil {
		panic(fmt.Sprintf("objc2/class: %v", err))
	}
	return cls
}

// For resolves the class a binding type represents.
func For[T Named](r *Registry) (Class, error) {
	var t T
	return r.Get(t.ClassName())
}
