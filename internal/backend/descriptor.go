// Package backend holds the immutable data model shared across the
// pipeline: backend descriptors and the table they live in. Descriptors are
// created once at startup from the config loader and never mutated
// afterward (§3 Lifecycle).
package backend

import "fmt"

// Kind is the transport a backend speaks.
type Kind string

const (
	KindCLI  Kind = "cli"
	KindHTTP Kind = "http"
)

// Dialect is the wire format an HTTP backend speaks.
type Dialect string

const (
	DialectNDJSON Dialect = "ndjson"
	DialectSSE    Dialect = "sse"
)

// Descriptor describes one configured backend. Fields not applicable to
// Kind are left zero-valued; CLI-only fields are ignored for HTTP backends
// and vice versa.
type Descriptor struct {
	Name    string
	Kind    Kind
	Enabled bool

	// CLI-only.
	Executable string

	// HTTP-only.
	BaseURL         string
	Dialect         Dialect
	DefaultModel    string
	PreferredModels []string
	AutoStart       bool
	AutoDetectModel bool
	MaxRetries      int
	RetryDelaySecs  int
}

// Table is the immutable, name-keyed set of configured backends.
type Table struct {
	byName map[string]Descriptor
	order  []string
}

// NewTable builds a Table from descriptors, rejecting duplicate names.
func NewTable(descriptors []Descriptor) (*Table, error) {
	t := &Table{byName: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if _, exists := t.byName[d.Name]; exists {
			return nil, fmt.Errorf("duplicate backend name: %q", d.Name)
		}
		t.byName[d.Name] = d
		t.order = append(t.order, d.Name)
	}
	return t, nil
}

// Get returns the descriptor for name and whether it exists.
func (t *Table) Get(name string) (Descriptor, bool) {
	d, ok := t.byName[name]
	return d, ok
}

// Names returns every configured backend name in load order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// EnabledNames returns every enabled backend name in load order.
func (t *Table) EnabledNames() []string {
	var out []string
	for _, name := range t.order {
		if t.byName[name].Enabled {
			out = append(out, name)
		}
	}
	return out
}
