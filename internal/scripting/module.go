package scripting

import (
	"sort"

	"emberline/internal/errs"
)

// MethodDef describes one natively-implemented callable exposed to the
// scripting runtime: its name, its doc string, and the function backing
// it.
type MethodDef struct {
	Name string
	Doc  string
	Fn   CallableFunc
}

// Module is a native extension module: a named method table a feature
// set exposes to the runtime. The runtime binds these by name; the
// engine never sees how.
type Module struct {
	name    string
	methods map[string]MethodDef
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{name: name, methods: make(map[string]MethodDef)}
}

// Name returns the module's import name.
func (m *Module) Name() string { return m.name }

// AddMethods registers method defs. Duplicate names are a fatal
// precondition failure - two natives fighting over one name is always a
// wiring bug.
func (m *Module) AddMethods(defs ...MethodDef) {
	for _, d := range defs {
		if _, dup := m.methods[d.Name]; dup {
			errs.Fatalf("module %q: method %q registered twice",
				m.name, d.Name)
		}
		m.methods[d.Name] = d
	}
}

// Method looks up a method def by name.
func (m *Module) Method(name string) (MethodDef, bool) {
	d, ok := m.methods[name]
	return d, ok
}

// Call invokes a method by name, translating errors at the boundary.
func (m *Module) Call(name string, args ...any) (any, error) {
	d, ok := m.methods[name]
	if !ok {
		return nil, errs.Newf(errs.KindNotFound,
			"module %q has no method %q", m.name, name)
	}
	res, err := d.Fn(args...)
	return res, TranslateError(err)
}

// MethodNames returns all method names, sorted.
func (m *Module) MethodNames() []string {
	out := make([]string, 0, len(m.methods))
	for name := range m.methods {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
