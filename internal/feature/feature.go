// Package feature is the registry of engine feature sets. A feature
// set registers a factory at init time and gets built exactly once, on
// first import; later imports see the same instance.
package feature

import (
	"sort"
	"sync"

	"emberline/internal/errs"
	"emberline/internal/logging"
)

// Set is one feature set: a named bundle of engine functionality with
// its own startup hook.
type Set interface {
	Name() string
	// OnImport runs exactly once, when the set is first imported.
	OnImport()
}

// entry pairs an instance with a latch that closes once its OnImport
// has finished, so no importer ever sees a half-initialized set.
type entry struct {
	inst  Set
	ready chan struct{}
}

var (
	mu        sync.Mutex
	factories = make(map[string]func() Set)
	instances = make(map[string]*entry)
)

// Register installs a factory for name. Called from package init;
// registering the same name twice is a fatal wiring bug.
func Register(name string, factory func() Set) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[name]; dup {
		errs.Fatalf("feature set %q registered twice", name)
	}
	factories[name] = factory
}

// Import returns the singleton instance for name, building it on first
// use. Concurrent importers all get the same instance, and none of
// them returns before the builder's OnImport has completed.
func Import(name string) (Set, error) {
	mu.Lock()
	if e, ok := instances[name]; ok {
		mu.Unlock()
		<-e.ready
		return e.inst, nil
	}
	factory, ok := factories[name]
	if !ok {
		mu.Unlock()
		return nil, errs.Newf(errs.KindNotFound,
			"feature set %q is not registered", name)
	}
	inst := factory()
	if inst.Name() != name {
		mu.Unlock()
		errs.Fatalf("feature set factory for %q built %q", name, inst.Name())
	}
	e := &entry{inst: inst, ready: make(chan struct{})}
	instances[name] = e
	mu.Unlock()
	logging.For("feature").Debug("feature set imported", "name", name)
	// Outside the lock so a set can import its dependencies from
	// OnImport without deadlocking; the ready latch holds the other
	// importers off until initialization is complete.
	inst.OnImport()
	close(e.ready)
	return inst, nil
}

// MustImport is Import for sets that are wiring-mandatory; a missing
// registration is fatal.
func MustImport(name string) Set {
	inst, err := Import(name)
	if err != nil {
		errs.Fatalf("importing feature set %q: %v", name, err)
	}
	return inst
}

// IsRegistered reports whether a factory exists for name.
func IsRegistered(name string) bool {
	mu.Lock()
	defer mu.Unlock()
	_, ok := factories[name]
	return ok
}

// Registered lists the registered set names, sorted.
func Registered() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
