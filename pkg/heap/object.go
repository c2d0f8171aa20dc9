package heap

import "ward/pkg/atom"

// Class is the object's class tag (§3.4's "class" field).
type Class uint8

const (
	ClassOrdinary Class = iota
	ClassArray
	ClassFunction
	ClassError
	ClassArguments
)

func (c Class) String() string {
	switch c {
	case ClassArray:
		return "array"
	case ClassFunction:
		return "function"
	case ClassError:
		return "error"
	case ClassArguments:
		return "arguments"
	default:
		return "ordinary"
	}
}

// NativeFunc is the "property access hook" / callable hook §1 reserves for
// the VM: a function object's behavior is an arbitrary Go closure supplied
// by whatever embeds the core (a bytecode VM in production, a test harness
// here), never a bytecode chunk the core itself interprets.
type NativeFunc func(receiver Value, args []Value) (Value, error)

// propSlot is one entry of an object's property table (§3.4's "properties"
// field), ordered by insertion the way own_keys must report them.
type propSlot struct {
	key          atom.Atom
	isAccessor   bool
	value        Value // valid when !isAccessor
	getter       Value // valid when isAccessor; Undefined if absent
	setter       Value // valid when isAccessor; Undefined if absent
	writable     bool
	enumerable   bool
	configurable bool
}

// Object is a property-bearing heap entity (§3.4). Exactly one concrete
// Go type backs every JS-observable object in this core; the "internal"
// column of §3.4's table is represented by class-specific fields below
// rather than by an interface{}, since the only class-specific state the
// core itself needs to reason about is the array length counter and the
// native call target — everything else (compiled function code, typed
// array backing stores, ...) belongs to the VM/stdlib layer (§1).
type Object struct {
	class      Class
	prototype  Value // Null or a KindPointer Value
	extensible bool
	hardened   bool // §4.5's HARDENED flag; the only flag ever cleared (rollback)

	props []propSlot
	index map[atom.Atom]int

	arrayLength int        // meaningful iff class == ClassArray
	native      NativeFunc // meaningful iff class == ClassFunction
}

func newObject(class Class, prototype Value) *Object {
	return &Object{
		class:      class,
		prototype:  prototype,
		extensible: true,
		index:      make(map[atom.Atom]int),
	}
}

func (o *Object) Class() Class        { return o.class }
func (o *Object) Prototype() Value    { return o.prototype }
func (o *Object) IsExtensible() bool  { return o.extensible }
func (o *Object) IsHardened() bool    { return o.hardened }
func (o *Object) ArrayLength() int    { return o.arrayLength }
func (o *Object) Native() NativeFunc  { return o.native }

func (o *Object) setHardened(v bool) { o.hardened = v }

// find returns the slot index for key, or -1.
func (o *Object) find(key atom.Atom) int {
	if i, ok := o.index[key]; ok {
		return i
	}
	return -1
}

// OwnKeys returns atoms in insertion order (§4.2 own_keys).
func (o *Object) OwnKeys() []atom.Atom {
	out := make([]atom.Atom, len(o.props))
	for i, p := range o.props {
		out[i] = p.key
	}
	return out
}

// HasOwn reports whether key names an own property.
func (o *Object) HasOwn(key atom.Atom) bool { return o.find(key) >= 0 }

// GetOwn returns an own data property's value; ok is false if key is
// absent or names an accessor (callers should use GetOwnAccessor then).
func (o *Object) GetOwn(key atom.Atom) (Value, bool) {
	i := o.find(key)
	if i < 0 || o.props[i].isAccessor {
		return Undefined, false
	}
	return o.props[i].value, true
}

// GetOwnAccessor returns an own accessor property's getter/setter pair.
func (o *Object) GetOwnAccessor(key atom.Atom) (get, set Value, ok bool) {
	i := o.find(key)
	if i < 0 || !o.props[i].isAccessor {
		return Undefined, Undefined, false
	}
	return o.props[i].getter, o.props[i].setter, true
}

// Descriptor describes a property-descriptor argument to Define (§3.4,
// §4.2.2). Every attribute is optional, exactly like the standard
// property-descriptor argument: a nil pointer, or a false Has* flag, means
// "caller did not specify this field" — existing state is kept on
// redefinition, and false is the default on creation.
type Descriptor struct {
	IsAccessor bool

	Value    Value
	HasValue bool

	Get, Set       Value
	HasGet, HasSet bool

	Writable     *bool
	Enumerable   *bool
	Configurable *bool
}

// DataDescriptor builds a fully-specified data descriptor, the shape
// Seal/Freeze and intrinsic setup redefine existing properties with.
func DataDescriptor(v Value, writable, enumerable, configurable bool) Descriptor {
	return Descriptor{Value: v, HasValue: true, Writable: &writable, Enumerable: &enumerable, Configurable: &configurable}
}

// AccessorDescriptor builds a fully-specified accessor descriptor.
func AccessorDescriptor(get, set Value, enumerable, configurable bool) Descriptor {
	return Descriptor{IsAccessor: true, Get: get, HasGet: true, Set: set, HasSet: true, Enumerable: &enumerable, Configurable: &configurable}
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Define implements §4.2.2's compatibility rules for defineProperty.
func (o *Object) Define(key atom.Atom, d Descriptor) error {
	i := o.find(key)
	if i < 0 {
		if !o.extensible {
			return errNotExtensible(key)
		}
		slot := propSlot{
			key:          key,
			isAccessor:   d.IsAccessor,
			writable:     boolOr(d.Writable, false),
			enumerable:   boolOr(d.Enumerable, false),
			configurable: boolOr(d.Configurable, false),
		}
		if d.IsAccessor {
			slot.getter, slot.setter = d.Get, d.Set
		} else {
			slot.value = d.Value
		}
		o.index[key] = len(o.props)
		o.props = append(o.props, slot)
		return nil
	}

	cur := &o.props[i]
	kindChanges := d.IsAccessor != cur.isAccessor
	if !cur.configurable {
		if d.Configurable != nil && *d.Configurable {
			return errRedefineNonConfigurable(key)
		}
		if d.Enumerable != nil && *d.Enumerable != cur.enumerable {
			return errRedefineNonConfigurable(key)
		}
		if kindChanges {
			return errRedefineNonConfigurable(key)
		}
		if cur.isAccessor {
			if (d.HasGet && d.Get != cur.getter) || (d.HasSet && d.Set != cur.setter) {
				return errRedefineNonConfigurable(key)
			}
		} else {
			if d.Writable != nil && *d.Writable && !cur.writable {
				return errRedefineNonConfigurable(key)
			}
			if d.HasValue && !cur.writable && !SameValue(d.Value, cur.value) {
				return errRedefineNonConfigurable(key)
			}
		}
	}

	if d.IsAccessor {
		cur.isAccessor = true
		cur.value = Undefined
		if d.HasGet {
			cur.getter = d.Get
		} else if kindChanges {
			cur.getter = Undefined
		}
		if d.HasSet {
			cur.setter = d.Set
		} else if kindChanges {
			cur.setter = Undefined
		}
	} else {
		cur.isAccessor = false
		cur.getter, cur.setter = Undefined, Undefined
		if d.HasValue {
			cur.value = d.Value
		} else if kindChanges {
			cur.value = Undefined
		}
	}
	if d.Writable != nil {
		cur.writable = *d.Writable
	}
	if d.Enumerable != nil {
		cur.enumerable = *d.Enumerable
	}
	if d.Configurable != nil {
		cur.configurable = *d.Configurable
	}
	return nil
}

// DeleteOwn implements §4.2.3.
func (o *Object) DeleteOwn(key atom.Atom) error {
	i := o.find(key)
	if i < 0 {
		return nil // deleting an absent property succeeds, per spec convention
	}
	if !o.props[i].configurable {
		return errDeleteNonConfigurable(key)
	}
	delete(o.index, key)
	o.props = append(o.props[:i], o.props[i+1:]...)
	for k, idx := range o.index {
		if idx > i {
			o.index[k] = idx - 1
		}
	}
	return nil
}

// PreventExtensions implements §4.2.4.
func (o *Object) PreventExtensions() {
	o.extensible = false
}

// IsSealed implements §4.2.4: non-extensible AND every own property
// non-configurable.
func (o *Object) IsSealed() bool {
	if o.extensible {
		return false
	}
	for _, p := range o.props {
		if p.configurable {
			return false
		}
	}
	return true
}

// IsFrozen implements §4.2.4: sealed AND every own data property
// non-writable.
func (o *Object) IsFrozen() bool {
	if !o.IsSealed() {
		return false
	}
	for _, p := range o.props {
		if !p.isAccessor && p.writable {
			return false
		}
	}
	return true
}

// Seal promotes every own property to configurable:false then marks the
// object non-extensible (§4.2.4). Promotion goes through Define so it
// obeys that operation's own error rules, though on a well-formed own
// property set (the only kind reachable through this package's API) no
// individual transition can fail.
func (o *Object) Seal() error {
	for _, key := range o.OwnKeys() {
		p := o.props[o.find(key)]
		var d Descriptor
		if p.isAccessor {
			d = AccessorDescriptor(p.getter, p.setter, p.enumerable, false)
		} else {
			d = DataDescriptor(p.value, p.writable, p.enumerable, false)
		}
		if err := o.Define(key, d); err != nil {
			return err
		}
	}
	o.PreventExtensions()
	return nil
}

// Freeze additionally promotes every own data property to non-writable
// (§4.2.4), then seals.
func (o *Object) Freeze() error {
	for _, key := range o.OwnKeys() {
		p := o.props[o.find(key)]
		if p.isAccessor {
			continue
		}
		if err := o.Define(key, DataDescriptor(p.value, false, p.enumerable, p.configurable)); err != nil {
			return err
		}
	}
	return o.Seal()
}

// Children returns the heap references §4.5 step 5 enqueues from this
// object: the prototype, then each own property's value (data) or
// getter-then-setter (accessor), in insertion order.
func (o *Object) Children() []Ref {
	var out []Ref
	if o.prototype.kind == KindPointer {
		out = append(out, o.prototype.ref)
	}
	for _, p := range o.props {
		if p.isAccessor {
			if p.getter.kind == KindPointer {
				out = append(out, p.getter.ref)
			}
			if p.setter.kind == KindPointer {
				out = append(out, p.setter.ref)
			}
		} else if p.value.kind == KindPointer {
			out = append(out, p.value.ref)
		}
	}
	return out
}

// trace visits every Value-typed field the collector must be able to
// rewrite in place when its target relocates (§3.2's enumerability
// invariant): the prototype slot and every property value/getter/setter.
func (o *Object) trace(visit func(*Value)) {
	visit(&o.prototype)
	for i := range o.props {
		if o.props[i].isAccessor {
			visit(&o.props[i].getter)
			visit(&o.props[i].setter)
		} else {
			visit(&o.props[i].value)
		}
	}
}

// setOwnFast installs a fresh writable/enumerable/configurable data
// property, bypassing Define's redefinition checks. Used by Set's
// "create a new property" branch (§4.2.1 step 3), which only ever targets
// a brand-new key.
func (o *Object) setOwnFast(key atom.Atom, v Value) {
	if i := o.find(key); i >= 0 {
		o.props[i].value = v
		return
	}
	o.index[key] = len(o.props)
	o.props = append(o.props, propSlot{key: key, value: v, writable: true, enumerable: true, configurable: true})
}
