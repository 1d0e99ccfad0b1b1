// Package config implements the committed app-config store.
//
// The store is read once at boot and written back atomically: the full
// serialized config goes to `<path>.tmp`, any existing config moves to
// `<path>.prev` (replacing a stale .prev first), and the temp file is
// then renamed into place. A failure at any step aborts the commit and
// leaves the previously committed config intact.
package config

import (
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"emberline/internal/errs"
)

// Store holds the typed config values for the app.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]any
	dirty  bool
}

// Load reads the config at path. A missing file yields an empty store;
// a present-but-unparseable file is an error (the caller decides whether
// to fall back or abort).
func Load(path string) (*Store, error) {
	s := &Store{path: path, values: make(map[string]any)}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errs.Wrap(errs.KindIO, err, "reading config")
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, errs.Wrap(errs.KindValue, err, "parsing config")
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	return s, nil
}

// Path returns the committed-config path.
func (s *Store) Path() string { return s.path }

// Dirty reports whether there are uncommitted changes.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Set stores a value and marks the config dirty.
func (s *Store) Set(key string, val any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = val
	s.dirty = true
}

// String returns the value for key, or def when absent. A value of the
// wrong type yields def plus a typed error.
func (s *Store) String(key, def string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.values[key]
	if !ok {
		return def, nil
	}
	v, ok := raw.(string)
	if !ok {
		return def, errs.Newf(errs.KindType,
			"config value %q is %T, expected string", key, raw)
	}
	return v, nil
}

// Int returns the value for key, or def when absent.
func (s *Store) Int(key string, def int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.values[key]
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	}
	return def, errs.Newf(errs.KindType,
		"config value %q is %T, expected int", key, raw)
}

// Float returns the value for key, or def when absent.
func (s *Store) Float(key string, def float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.values[key]
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return def, errs.Newf(errs.KindType,
		"config value %q is %T, expected float", key, raw)
}

// Bool returns the value for key, or def when absent.
func (s *Store) Bool(key string, def bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.values[key]
	if !ok {
		return def, nil
	}
	v, ok := raw.(bool)
	if !ok {
		return def, errs.Newf(errs.KindType,
			"config value %q is %T, expected bool", key, raw)
	}
	return v, nil
}

// Snapshot returns a copy of the current values for read-only fan-out.
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Commit serializes the full config and swaps it into place:
//
//	write <path>.tmp -> move <path> to <path>.prev -> move .tmp to <path>
//
// Step two removes a stale .prev first for platforms whose rename does
// not overwrite. Any failing step aborts and returns the OS error; the
// prior config stays intact at the original path, and the second-to-last
// commit stays recoverable at .prev.
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(s.values)
	if err != nil {
		return errs.Wrap(errs.KindValue, err, "serializing config")
	}

	tmp := s.path + ".tmp"
	prev := s.path + ".prev"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errs.Wrap(errs.KindIO, err, "writing config temp file")
	}
	if _, err := os.Stat(s.path); err == nil {
		if _, err := os.Stat(prev); err == nil {
			if err := os.Remove(prev); err != nil {
				return errs.Wrap(errs.KindIO, err,
					"removing stale config backup")
			}
		}
		if err := os.Rename(s.path, prev); err != nil {
			return errs.Wrap(errs.KindIO, err, "backing up config")
		}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errs.Wrap(errs.KindIO, err, "installing config")
	}
	s.dirty = false
	return nil
}
