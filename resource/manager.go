package resource

import (
	"slices"

	"github.com/gogpu/framegraph"
)

// entry is one stored object plus the function that destroys it.
type entry struct {
	kind    Kind
	obj     any
	release func()
}

// Manager owns GPU objects and maps handles and names to them.
type Manager struct {
	counter *Counter
	entries map[ID]entry
	names   map[string]ID
}

// Option configures a Manager.
type Option func(*Manager)

// WithCounter makes the manager draw ids from c instead of the process-wide
// counter. Tests use it to get predictable ids.
func WithCounter(c *Counter) Option {
	return func(m *Manager) {
		if c != nil {
			m.counter = c
		}
	}
}

// NewManager creates an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		counter: defaultCounter,
		entries: make(map[ID]entry),
		names:   make(map[string]ID),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// store allocates an id for obj. release may be nil for objects the manager
// only tracks.
func store[T any](m *Manager, obj T, release func()) Handle[T] {
	id := m.counter.Next()
	k := kindOf[T]()
	m.entries[id] = entry{kind: k, obj: obj, release: release}
	framegraph.Logger().Debug("resource: stored", "id", uint64(id), "kind", k.String())
	return Handle[T]{id: id}
}

// Insert stores an object created outside the manager, such as a view
// supplied by a presentation surface. release is called on removal and may
// be nil.
func Insert[T any](m *Manager, obj T, release func()) (Handle[T], error) {
	if kindOf[T]() == KindUnknown {
		return Handle[T]{}, ErrUnsupportedKind
	}
	if any(obj) == nil {
		return Handle[T]{}, ErrNilObject
	}
	return store(m, obj, release), nil
}

// Lookup returns the object stored under id if it has type T.
func Lookup[T any](m *Manager, id ID) (T, error) {
	var zero T
	want := kindOf[T]()
	e, ok := m.entries[id]
	if !ok {
		return zero, &Error{Op: "get", ID: id, Want: want, Err: ErrResourceNotFound}
	}
	if e.kind != want {
		return zero, &Error{Op: "get", ID: id, Want: want, Got: e.kind, Err: ErrTypeMismatch}
	}
	v, ok := e.obj.(T)
	if !ok {
		return zero, &Error{Op: "get", ID: id, Want: want, Got: e.kind, Err: ErrTypeMismatch}
	}
	return v, nil
}

// Get returns the object h refers to.
func Get[T any](m *Manager, h Handle[T]) (T, error) {
	return Lookup[T](m, h.id)
}

// KindOf reports the kind stored under id.
func (m *Manager) KindOf(id ID) (Kind, bool) {
	e, ok := m.entries[id]
	return e.kind, ok
}

// Contains reports whether id has a table entry.
func (m *Manager) Contains(id ID) bool {
	_, ok := m.entries[id]
	return ok
}

// Remove destroys the object h refers to and drops every name bound to it.
// It reports whether an entry was removed; a handle whose kind does not
// match the stored entry removes nothing.
func (m *Manager) Remove(h AnyHandle) bool {
	e, ok := m.entries[h.ID()]
	if !ok || e.kind != h.Kind() {
		return false
	}
	return m.RemoveID(h.ID())
}

// RemoveID destroys the entry stored under id regardless of kind.
func (m *Manager) RemoveID(id ID) bool {
	e, ok := m.entries[id]
	if !ok {
		return false
	}
	delete(m.entries, id)
	for name, bound := range m.names {
		if bound == id {
			delete(m.names, name)
		}
	}
	if e.release != nil {
		e.release()
	}
	framegraph.Logger().Debug("resource: removed", "id", uint64(id), "kind", e.kind.String())
	return true
}

// Count returns the number of stored objects.
func (m *Manager) Count() int { return len(m.entries) }

// CountKind returns the number of stored objects of kind k.
func (m *Manager) CountKind(k Kind) int {
	n := 0
	for _, e := range m.entries {
		if e.kind == k {
			n++
		}
	}
	return n
}

// IDs returns the stored ids in creation order.
func (m *Manager) IDs() []ID {
	ids := make([]ID, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Clear destroys every object, newest first, and unbinds all names.
// Ids are not reset.
func (m *Manager) Clear() {
	ids := m.IDs()
	for i := len(ids) - 1; i >= 0; i-- {
		if e := m.entries[ids[i]]; e.release != nil {
			e.release()
		}
	}
	m.entries = make(map[ID]entry)
	m.names = make(map[string]ID)
	framegraph.Logger().Debug("resource: cleared", "count", len(ids))
}

// PublishNamed binds name to the object h refers to, replacing any earlier
// binding. The object must be present.
func (m *Manager) PublishNamed(name string, h AnyHandle) error {
	e, ok := m.entries[h.ID()]
	if !ok {
		return &Error{Op: "publish " + name, ID: h.ID(), Want: h.Kind(), Err: ErrResourceNotFound}
	}
	if e.kind != h.Kind() {
		return &Error{Op: "publish " + name, ID: h.ID(), Want: h.Kind(), Got: e.kind, Err: ErrTypeMismatch}
	}
	m.names[name] = h.ID()
	return nil
}

// Unpublish removes a name binding. The object itself is kept.
func (m *Manager) Unpublish(name string) bool {
	if _, ok := m.names[name]; !ok {
		return false
	}
	delete(m.names, name)
	return true
}

// Names returns the bound names in sorted order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.names))
	for name := range m.names {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Named returns the handle bound to name. It reports false if the name is
// unbound or bound to an object of another kind.
func Named[T any](m *Manager, name string) (Handle[T], bool) {
	id, ok := m.names[name]
	if !ok {
		return Handle[T]{}, false
	}
	e, ok := m.entries[id]
	if !ok || e.kind != kindOf[T]() {
		return Handle[T]{}, false
	}
	return Handle[T]{id: id}, true
}

// NamedObject resolves name straight to the stored object.
func NamedObject[T any](m *Manager, name string) (T, error) {
	id, ok := m.names[name]
	if !ok {
		var zero T
		return zero, &Error{Op: "get " + name, Want: kindOf[T](), Err: ErrResourceNotFound}
	}
	return Lookup[T](m, id)
}
