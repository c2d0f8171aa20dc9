// Package compartment implements §4.3's Compartment: an isolated set of
// globals and lexical top-level bindings that nonetheless shares one
// Realm's intrinsics, by reference, with every other compartment created
// against it.
package compartment

import (
	"ward/pkg/atom"
	coreerrors "ward/pkg/errors"
	"ward/pkg/heap"
	"ward/pkg/realm"
)

// Evaluator is the "evaluate string as script" hook §1 reserves for the
// VM: this core never parses or executes source text itself, so
// Compartment.Evaluate delegates to whatever lexer/parser/bytecode VM the
// host wires in.
type Evaluator interface {
	Evaluate(c *Compartment, sourceText string) (heap.Value, error)
}

type lexBinding struct {
	key      atom.Atom
	value    heap.Value
	writable bool
}

// Options configures a new Compartment (§4.3): additional globals merged
// onto globalThis beyond the realm's template, and lexical top-level
// bindings that are visible to evaluated script but never become
// properties of globalThis.
type Options struct {
	Globals        map[string]heap.Value
	GlobalLexicals map[string]heap.Value
	Evaluator      Evaluator
}

// Compartment is §4.3's isolated-globals, shared-intrinsics unit: its own
// globalThis object and lexical bindings, a reference to the Realm that
// owns the intrinsics, and an optional parent (§4.3 leaves nested
// compartments as a host-level composition, not a distinct core concept,
// so parent is informational only — nothing here walks it to resolve a
// binding).
type Compartment struct {
	h     *heap.Heap
	realm *realm.Realm
	eval  Evaluator

	globalThis heap.Value
	lexicals   []lexBinding
	lexIndex   map[atom.Atom]int

	parent *Compartment
}

// Roots implements heap.RootSource: globalThis and every lexical binding
// value are GC roots for the Compartment's lifetime.
func (c *Compartment) Roots() []*heap.Value {
	out := []*heap.Value{&c.globalThis}
	for i := range c.lexicals {
		out = append(out, &c.lexicals[i].value)
	}
	return out
}

// New creates a Compartment against r (§4.3): globalThis starts as a
// fresh object whose own properties are exactly r's shared-intrinsic
// template plus opts.Globals plus a non-enumerable "globalThis"
// self-reference, and whose lexical bindings are
// opts.GlobalLexicals — never installed as globalThis properties, so a
// lexical binding and a global of the same name do not collide the way
// two globalThis properties would.
func New(h *heap.Heap, r *realm.Realm, opts Options) (*Compartment, error) {
	c := &Compartment{h: h, realm: r, eval: opts.Evaluator, lexIndex: make(map[atom.Atom]int)}
	h.AddRootSource(c)

	gt, err := h.NewObject(r.ObjectPrototype)
	if err != nil {
		return nil, err
	}
	c.globalThis = gt

	for _, b := range r.Globals() {
		key := h.Atoms().Intern(b.Name)
		if err := h.Object(gt.Ref()).Define(key, heap.DataDescriptor(b.Value, true, true, true)); err != nil {
			return nil, err
		}
	}
	for name, v := range opts.Globals {
		key := h.Atoms().Intern(name)
		if err := h.Object(gt.Ref()).Define(key, heap.DataDescriptor(v, true, true, true)); err != nil {
			return nil, err
		}
	}
	globalThisKey := h.Atoms().Intern("globalThis")
	if err := h.Object(gt.Ref()).Define(globalThisKey, heap.DataDescriptor(gt, true, false, true)); err != nil {
		return nil, err
	}

	for name, v := range opts.GlobalLexicals {
		c.defineLexical(name, v, true)
	}

	return c, nil
}

func (c *Compartment) defineLexical(name string, v heap.Value, writable bool) {
	key := c.h.Atoms().Intern(name)
	if i, ok := c.lexIndex[key]; ok {
		c.lexicals[i].value = v
		c.lexicals[i].writable = writable
		return
	}
	c.lexIndex[key] = len(c.lexicals)
	c.lexicals = append(c.lexicals, lexBinding{key: key, value: v, writable: writable})
}

// GlobalThis returns the compartment's own global object.
func (c *Compartment) GlobalThis() heap.Value { return c.globalThis }

// Realm returns the realm this compartment was created against.
func (c *Compartment) Realm() *realm.Realm { return c.realm }

// SetParent records an informational parent link; §4.3 does not define
// any lookup that walks it.
func (c *Compartment) SetParent(p *Compartment) { c.parent = p }

// Parent returns the compartment's recorded parent, or nil.
func (c *Compartment) Parent() *Compartment { return c.parent }

// LookupLexical resolves name against the compartment's lexical
// bindings, reporting ok=false if name is not lexically bound (callers
// fall through to globalThis property lookup next).
func (c *Compartment) LookupLexical(name string) (heap.Value, bool) {
	key, ok := c.h.Atoms().Lookup(name)
	if !ok {
		return heap.Undefined, false
	}
	i, ok := c.lexIndex[key]
	if !ok {
		return heap.Undefined, false
	}
	return c.lexicals[i].value, true
}

// SetLexical assigns an existing lexical binding, failing TypeError on a
// non-writable one (the same shape as a frozen property's write rule,
// even though lexical bindings are never object properties).
func (c *Compartment) SetLexical(name string, v heap.Value) error {
	key := c.h.Atoms().Intern(name)
	i, ok := c.lexIndex[key]
	if !ok {
		return coreerrors.NewReferenceError("%s is not defined", name)
	}
	if !c.lexicals[i].writable {
		return coreerrors.NewTypeError("assignment to constant variable %s", name)
	}
	c.lexicals[i].value = v
	return nil
}

// ResolveIdentifier implements the identifier-resolution order a host
// evaluator needs at the top level of a script (§4.3/§6.1): lexical
// bindings first, then globalThis's own and inherited properties, else a
// ReferenceError, never silently creating a binding.
func (c *Compartment) ResolveIdentifier(name string) (heap.Value, error) {
	if v, ok := c.LookupLexical(name); ok {
		return v, nil
	}
	key := c.h.Atoms().Intern(name)
	if c.h.Has(c.globalThis, key) {
		return c.h.Get(c.globalThis, key)
	}
	return heap.Undefined, coreerrors.NewReferenceError("%s is not defined", name)
}

// ThisValue implements the Open Question §4.3/§9 leaves unresolved:
// evaluated script's top-level this is globalThis when the compartment
// was given lexical bindings (the "module-ish" construction pattern),
// and Null otherwise (the plain construction pattern, matching a classic
// script's non-strict top-level this being the global object only by
// convention this core declines to bake in without an explicit opt-in).
func (c *Compartment) ThisValue() heap.Value {
	if len(c.lexicals) > 0 {
		return c.globalThis
	}
	return heap.Null
}

// Evaluate runs sourceText through the configured Evaluator (§1/§6.1).
// A Compartment created without one can still be built, populated and
// hardened-against; only script evaluation itself requires the host to
// have supplied a VM.
func (c *Compartment) Evaluate(sourceText string) (heap.Value, error) {
	if c.eval == nil {
		return heap.Undefined, coreerrors.NewTypeError("compartment has no evaluator configured")
	}
	return c.eval.Evaluate(c, sourceText)
}
