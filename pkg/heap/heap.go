package heap

import (
	"ward/pkg/atom"
	coreerrors "ward/pkg/errors"
)

// Ref is a handle into the heap's object table. It survives relocation
// only by being reachable from a root at collection time (§3.2); a Ref
// held outside the root set across an allocation is, by design,
// indistinguishable from a dangling pointer once a collection runs.
type Ref uint32

// RootSource lets a collaborator (a Realm, a Compartment, an evaluation
// stack) register the Refs it holds as GC roots. Roots returns pointers
// into the source's own storage rather than copies, so Collect can both
// read the current Ref (to trace from) and overwrite it in place with the
// post-compaction index — the same in-place-rewrite contract Object.trace
// gives the collector for property tables (§3.2's "every managed pointer
// ... MUST be reachable from a root").
type RootSource interface {
	Roots() []*Value
}

// Stats exposes the GC counters of the SUPPLEMENTED FEATURES' "GC
// statistics" entry: plain counters, no exporter, read via an accessor — the
// teacher's pkg/vm/cache.go idiom of tracking hits/misses in a struct.
type Stats struct {
	Collections int
	Relocated   int
	BytesInUse  int // object count today; a real byte buffer would size this in bytes
}

// Heap is the fixed-size, bump-allocated, tracing-compacting managed heap
// of §3.2. Capacity is expressed in object slots rather than raw bytes:
// Go gives us no portable way to lay out arbitrary heap objects over a
// caller-supplied []byte without unsafe.Pointer arithmetic that the Go
// type system cannot check, so the "caller-provided memory buffer" of
// §6.1 is modeled as a fixed-capacity slot table allocated once at
// context creation (see pkg/engine) and never grown — the capacity limit,
// the collection trigger, and the OutOfMemory failure are all real; only
// the physical byte-buffer layout is abstracted away.
type Heap struct {
	capacity int
	objects  []*Object // index 0 is the permanently-nil slot; Ref 0 means "no object"
	free     []Ref     // reusable slots, taken from the end by Allocate; Collect compacts instead of freeing slots and leaves this empty

	roots []Value // explicit LIFO root stack (root_push/root_pop, §4.1)

	sources []RootSource
	atoms   *atom.Table

	debugRelocateEveryAlloc bool
	stats                   Stats
}

// New creates a heap with room for capacity objects.
func New(capacity int) *Heap {
	return &Heap{
		capacity: capacity,
		objects:  make([]*Object, 1, capacity+1),
		atoms:    atom.NewTable(),
	}
}

// SetDebugRelocateEveryAlloc enables the §4.1 SHOULD: a collection runs on
// every single allocation, so a Ref an implementer forgot to root becomes
// observably wrong (pointing at whatever now occupies that slot) almost
// immediately instead of only once the heap happens to fill up.
func (h *Heap) SetDebugRelocateEveryAlloc(on bool) { h.debugRelocateEveryAlloc = on }

// Atoms returns the heap's atom table (§3.3): property keys intern here.
func (h *Heap) Atoms() *atom.Table { return h.atoms }

// Stats returns a snapshot of the GC counters.
func (h *Heap) Stats() Stats { return h.stats }

// AddRootSource registers a long-lived root provider (a Realm or a
// Compartment). It is never removed: compartments and the realm live for
// the lifetime of the context (§6.1's destroy tears the whole heap down
// at once, so individual deregistration has nothing to buy).
func (h *Heap) AddRootSource(rs RootSource) { h.sources = append(h.sources, rs) }

// RootPush pushes v onto the explicit LIFO root stack. Any Ref-bearing
// Value held across an Allocate call MUST be pushed first.
func (h *Heap) RootPush(v Value) { h.roots = append(h.roots, v) }

// RootPop pops the most recently pushed root.
func (h *Heap) RootPop() {
	if len(h.roots) == 0 {
		return
	}
	h.roots = h.roots[:len(h.roots)-1]
}

// deref resolves a Ref to its *Object. Index 0 and out-of-range refs
// return nil — the caller asked for something that either never existed
// or has, per §3.2's warning, gone dangling.
func (h *Heap) deref(r Ref) *Object {
	if r == 0 || int(r) >= len(h.objects) {
		return nil
	}
	return h.objects[r]
}

// Allocate reserves a new object of the given class with prototype proto,
// returning a freshly-rooted reference (§4.1): the Ref is pushed onto the
// explicit root stack before Allocate returns, so it survives the very
// next allocation without the caller doing anything; the caller pops it
// once the object has been adopted by a longer-lived root (stored into an
// already-rooted property, a global, ...).
func (h *Heap) Allocate(class Class, proto Value) (Ref, error) {
	if h.debugRelocateEveryAlloc {
		h.Collect()
	} else if h.liveCount() >= h.capacity {
		h.Collect()
	}
	if h.liveCount() >= h.capacity {
		return 0, coreerrors.NewOutOfMemory("heap exhausted (capacity %d)", h.capacity)
	}
	obj := newObject(class, proto)
	var ref Ref
	if n := len(h.free); n > 0 {
		ref = h.free[n-1]
		h.free = h.free[:n-1]
		h.objects[ref] = obj
	} else {
		ref = Ref(len(h.objects))
		h.objects = append(h.objects, obj)
	}
	h.stats.BytesInUse++
	v := pointer(ref)
	h.RootPush(v)
	return ref, nil
}

func (h *Heap) liveCount() int { return len(h.objects) - 1 - len(h.free) }

// Object resolves a Ref to the *Object it names, for callers (Realm,
// Compartment, harden) that need direct property-table access. Returns
// nil for a stale or absent Ref.
func (h *Heap) Object(r Ref) *Object { return h.deref(r) }

// Value wraps a Ref as a heap-pointer Value.
func (h *Heap) Value(r Ref) Value { return pointer(r) }

// Collect runs the tracing, compacting collector of §3.2/§4.1: it visits
// every root, re-numbers every reachable object in pre-order-of-tracing
// (the tie-break §4.1 requires for determinism), and rewrites every
// pointer-bearing Value it finds — in property tables, in the explicit
// root stack, and in every registered RootSource — to the new numbering.
// Collect never fails; an inconsistent root set is undefined behavior
// exactly as §4.1 says, caught in practice by DebugRelocateEveryAlloc.
func (h *Heap) Collect() {
	visited := make(map[Ref]bool)
	order := make([]Ref, 0, len(h.objects))

	var visit func(Ref)
	visit = func(r Ref) {
		if r == 0 || visited[r] {
			return
		}
		obj := h.deref(r)
		if obj == nil {
			return
		}
		visited[r] = true
		order = append(order, r)
		for _, child := range obj.Children() {
			visit(child)
		}
	}

	for _, v := range h.roots {
		if v.kind == KindPointer {
			visit(v.ref)
		}
	}
	for _, src := range h.sources {
		for _, root := range src.Roots() {
			if root.kind == KindPointer {
				visit(root.ref)
			}
		}
	}

	mapping := make(map[Ref]Ref, len(order))
	newObjects := make([]*Object, len(order)+1, h.capacity+1)
	for i, old := range order {
		nr := Ref(i + 1)
		mapping[old] = nr
		newObjects[nr] = h.objects[old]
	}

	rewrite := func(v *Value) {
		if v.kind != KindPointer {
			return
		}
		if nr, ok := mapping[v.ref]; ok {
			v.ref = nr
		}
	}
	for _, obj := range newObjects[1:] {
		obj.trace(rewrite)
	}
	for i := range h.roots {
		rewrite(&h.roots[i])
	}
	for _, src := range h.sources {
		for _, root := range src.Roots() {
			rewrite(root)
		}
	}

	h.stats.Collections++
	h.stats.Relocated += len(order)
	h.stats.BytesInUse = len(order)
	h.objects = newObjects
	h.free = nil
}

// Get implements §4.2's get(O,K): walks the prototype chain, invoking a
// getter if the first match found is an accessor; returns Undefined if K
// is absent everywhere in the chain.
func (h *Heap) Get(o Value, key atom.Atom) (Value, error) {
	cur := o
	for cur.kind == KindPointer {
		obj := h.deref(cur.ref)
		if obj == nil {
			break
		}
		if i := obj.find(key); i >= 0 {
			slot := obj.props[i]
			if slot.isAccessor {
				if slot.getter.kind != KindPointer {
					return Undefined, nil
				}
				return h.Call(slot.getter, o, nil)
			}
			return slot.value, nil
		}
		cur = obj.prototype
	}
	return Undefined, nil
}

// Has implements §4.2's has(O,K).
func (h *Heap) Has(o Value, key atom.Atom) bool {
	cur := o
	for cur.kind == KindPointer {
		obj := h.deref(cur.ref)
		if obj == nil {
			break
		}
		if obj.HasOwn(key) {
			return true
		}
		cur = obj.prototype
	}
	return false
}

// Set implements §4.2.1's assignment algorithm.
func (h *Heap) Set(o Value, key atom.Atom, v Value) error {
	if o.kind != KindPointer {
		return nil // primitives silently discard assignment, as in non-strict property writes to a coerced wrapper; the core has no boxing (§6.3)
	}
	receiver := h.deref(o.ref)
	if receiver == nil {
		return nil
	}

	cur := o
	for cur.kind == KindPointer {
		obj := h.deref(cur.ref)
		if obj == nil {
			break
		}
		if i := obj.find(key); i >= 0 {
			slot := obj.props[i]
			if slot.isAccessor {
				if slot.setter.kind != KindPointer {
					return errAssignAccessorNoSetter(key)
				}
				_, err := h.Call(slot.setter, o, []Value{v})
				return err
			}
			if cur.ref == o.ref {
				if !slot.writable {
					return errAssignReadOnly(key)
				}
				obj.props[i].value = v
				return nil
			}
			// a prototype's data property shadows the assignment.
			if !slot.writable {
				return errAssignReadOnly(key)
			}
			break
		}
		cur = obj.prototype
	}

	if !receiver.extensible {
		return errNotExtensibleAssign(key)
	}
	receiver.setOwnFast(key, v)
	return nil
}

func errNotExtensibleAssign(key atom.Atom) error {
	return coreerrors.NewTypeError("cannot create property (atom %d): object is not extensible", key)
}

// GetPrototype implements §4.2's get_prototype(O).
func (h *Heap) GetPrototype(o Value) Value {
	if o.kind != KindPointer {
		return Null
	}
	obj := h.deref(o.ref)
	if obj == nil {
		return Null
	}
	return obj.prototype
}

// SetPrototype implements §4.2's set_prototype(O,P): fails TypeError if O
// is non-extensible or P would close a cycle through O.
func (h *Heap) SetPrototype(o Value, p Value) error {
	if o.kind != KindPointer {
		return nil
	}
	obj := h.deref(o.ref)
	if obj == nil {
		return nil
	}
	if !obj.extensible {
		return errSetPrototypeNonExtensible()
	}
	cur := p
	for cur.kind == KindPointer {
		if cur.ref == o.ref {
			return errPrototypeCycle()
		}
		next := h.deref(cur.ref)
		if next == nil {
			break
		}
		cur = next.prototype
	}
	obj.prototype = p
	return nil
}

// Call invokes fn (which must be a ClassFunction object) with the given
// receiver and arguments — the "property access hook" that lets get/set
// run accessor functions without the core itself owning a bytecode
// interpreter (§1).
func (h *Heap) Call(fn Value, receiver Value, args []Value) (Value, error) {
	if fn.kind != KindPointer {
		return Undefined, errNotCallable()
	}
	obj := h.deref(fn.ref)
	if obj == nil || obj.class != ClassFunction || obj.native == nil {
		return Undefined, errNotCallable()
	}
	return obj.native(receiver, args)
}

// NewFunction allocates a ClassFunction object wrapping a native closure,
// rooting it on the explicit stack the way Allocate always does.
func (h *Heap) NewFunction(proto Value, fn NativeFunc) (Value, error) {
	ref, err := h.Allocate(ClassFunction, proto)
	if err != nil {
		return Undefined, err
	}
	h.deref(ref).native = fn
	return pointer(ref), nil
}

// NewObject allocates a plain ClassOrdinary object with the given
// prototype (Null for the root of a chain).
func (h *Heap) NewObject(proto Value) (Value, error) {
	ref, err := h.Allocate(ClassOrdinary, proto)
	if err != nil {
		return Undefined, err
	}
	return pointer(ref), nil
}

// NewArray allocates a ClassArray object and installs its own
// non-configurable, non-enumerable "length" data property tracking
// arrayLength (array-index fast paths and holes enforcement belong to the
// VM/stdlib layer per §1/§6.3; this core only guarantees the object
// exists with the right class and a coherent length slot).
func (h *Heap) NewArray(proto Value, length int) (Value, error) {
	ref, err := h.Allocate(ClassArray, proto)
	if err != nil {
		return Undefined, err
	}
	obj := h.deref(ref)
	obj.arrayLength = length
	lengthAtom := h.atoms.Intern("length")
	obj.index[lengthAtom] = len(obj.props)
	obj.props = append(obj.props, propSlot{key: lengthAtom, value: Int(int64(length)), writable: true})
	return pointer(ref), nil
}

// IsHardened reports whether the object named by r carries the HARDENED
// flag (§4.5). A stale or absent ref reports hardened, since there is
// nothing left to harden.
func (h *Heap) IsHardened(r Ref) bool {
	obj := h.deref(r)
	if obj == nil {
		return true
	}
	return obj.IsHardened()
}

// SetHardened sets or clears the HARDENED flag on the object named by r;
// clearing it is only ever done by harden's own rollback path (§4.5).
func (h *Heap) SetHardened(r Ref, v bool) {
	if obj := h.deref(r); obj != nil {
		obj.setHardened(v)
	}
}

// FreezeObject applies §4.2.4's freeze to the object named by r.
func (h *Heap) FreezeObject(r Ref) error {
	obj := h.deref(r)
	if obj == nil {
		return nil
	}
	return obj.Freeze()
}

// ChildrenOf returns the refs §4.5 step 5 enqueues from the object named
// by r: its prototype, then each own property's value or getter/setter
// pair, in insertion order.
func (h *Heap) ChildrenOf(r Ref) []Ref {
	obj := h.deref(r)
	if obj == nil {
		return nil
	}
	return obj.Children()
}

// SetArrayLength updates an array's internal length slot and its "length"
// data property in lockstep, failing the way a frozen array's push must
// (§8 scenario 6): if "length" is no longer writable, the push is
// rejected with the same TypeError an ordinary Set against a frozen
// property would raise.
func (h *Heap) SetArrayLength(o Value, length int) error {
	lengthAtom := h.atoms.Intern("length")
	if err := h.Set(o, lengthAtom, Int(int64(length))); err != nil {
		return err
	}
	if o.kind == KindPointer {
		if obj := h.deref(o.ref); obj != nil {
			obj.arrayLength = length
		}
	}
	return nil
}
