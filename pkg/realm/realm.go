// Package realm builds the single shared set of intrinsics §4.3 requires
// every Compartment of a Realm to see by reference: one Object.prototype,
// one Array.prototype, one harden function, and so on, built once when
// the Realm is created and never duplicated per compartment.
package realm

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"ward/pkg/atom"
	coreerrors "ward/pkg/errors"
	"ward/pkg/harden"
	"ward/pkg/heap"
	"ward/pkg/jsregexp"
)

// Binding is one entry of the template a Realm hands a new Compartment
// to seed its globalThis object with (§4.3): a name and the shared
// intrinsic Value it should point at.
type Binding struct {
	Name  string
	Value heap.Value
}

// Realm is the shared intrinsics set of §4.3: one per engine context,
// referenced by every Compartment created against it. lockedDown latches
// permanently true on the Realm's first lockdown() call, before any
// hardening runs (§4.4), so it stays set even if that hardening fails; a
// second call fails without re-running any hardening.
type Realm struct {
	h *heap.Heap

	ObjectPrototype        heap.Value
	FunctionPrototype      heap.Value
	ArrayPrototype         heap.Value
	ErrorPrototype         heap.Value
	TypeErrorPrototype     heap.Value
	ReferenceErrorPrototype heap.Value
	SyntaxErrorPrototype   heap.Value
	RangeErrorPrototype    heap.Value
	StringPrototype        heap.Value
	NumberPrototype        heap.Value
	BooleanPrototype       heap.Value
	RegExpPrototype        heap.Value

	ObjectConstructor           heap.Value
	ArrayConstructor            heap.Value
	ErrorConstructor            heap.Value
	TypeErrorConstructor        heap.Value
	ReferenceErrorConstructor   heap.Value
	SyntaxErrorConstructor      heap.Value
	RangeErrorConstructor       heap.Value

	MathObject heap.Value
	JSONObject heap.Value

	HardenFn       heap.Value
	LockdownFn     heap.Value
	CompartmentCtor heap.Value

	globals []Binding

	lockedDown bool
}

// Roots implements heap.RootSource: every field above that can carry a
// heap pointer is a GC root for as long as the Realm lives, which is the
// lifetime of the engine context (§6.1).
func (r *Realm) Roots() []*heap.Value {
	out := []*heap.Value{
		&r.ObjectPrototype, &r.FunctionPrototype, &r.ArrayPrototype,
		&r.ErrorPrototype, &r.TypeErrorPrototype, &r.ReferenceErrorPrototype,
		&r.SyntaxErrorPrototype, &r.RangeErrorPrototype,
		&r.StringPrototype, &r.NumberPrototype, &r.BooleanPrototype,
		&r.RegExpPrototype,
		&r.ObjectConstructor, &r.ArrayConstructor,
		&r.ErrorConstructor, &r.TypeErrorConstructor, &r.ReferenceErrorConstructor,
		&r.SyntaxErrorConstructor, &r.RangeErrorConstructor,
		&r.MathObject, &r.JSONObject,
		&r.HardenFn, &r.LockdownFn, &r.CompartmentCtor,
	}
	for i := range r.globals {
		out = append(out, &r.globals[i].Value)
	}
	return out
}

// IsLockedDown reports whether lockdown() has already run on this realm.
func (r *Realm) IsLockedDown() bool { return r.lockedDown }

// Globals returns the (name, intrinsic) template a new Compartment copies
// onto its own globalThis object (§4.3). Once the realm is locked down,
// "lockdown" itself is omitted: §4.4 makes it a one-shot global, gone
// from every compartment created afterward.
func (r *Realm) Globals() []Binding {
	if !r.lockedDown {
		return r.globals
	}
	out := make([]Binding, 0, len(r.globals))
	for _, b := range r.globals {
		if b.Name == "lockdown" {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (r *Realm) bind(name string, v heap.Value) {
	r.globals = append(r.globals, Binding{Name: name, Value: v})
}

// New builds a fresh Realm's full intrinsic set over h: Object.prototype
// at the root, with Function.prototype and the other prototypes inheriting
// from it (the Error subclasses through Error.prototype),
// the Error hierarchy of §7, Math/JSON, RegExp, and the harden/lockdown/
// Compartment globals of §4.4/§4.3.
func New(h *heap.Heap) (*Realm, error) {
	r := &Realm{h: h}
	h.AddRootSource(r)

	var err error
	if r.ObjectPrototype, err = h.NewObject(heap.Null); err != nil {
		return nil, err
	}
	if r.FunctionPrototype, err = h.NewObject(r.ObjectPrototype); err != nil {
		return nil, err
	}
	if r.ArrayPrototype, err = h.NewObject(r.ObjectPrototype); err != nil {
		return nil, err
	}
	if r.StringPrototype, err = h.NewObject(r.ObjectPrototype); err != nil {
		return nil, err
	}
	if r.NumberPrototype, err = h.NewObject(r.ObjectPrototype); err != nil {
		return nil, err
	}
	if r.BooleanPrototype, err = h.NewObject(r.ObjectPrototype); err != nil {
		return nil, err
	}
	if r.RegExpPrototype, err = h.NewObject(r.ObjectPrototype); err != nil {
		return nil, err
	}

	if err := r.initObjectPrototype(); err != nil {
		return nil, err
	}
	if err := r.initErrors(); err != nil {
		return nil, err
	}
	if err := r.initMath(); err != nil {
		return nil, err
	}
	if err := r.initJSON(); err != nil {
		return nil, err
	}
	if err := r.initRegExp(); err != nil {
		return nil, err
	}
	if err := r.initObjectConstructor(); err != nil {
		return nil, err
	}
	if err := r.initArray(); err != nil {
		return nil, err
	}
	if err := r.initGlobalFunctions(); err != nil {
		return nil, err
	}
	if err := r.initHardenAndLockdown(); err != nil {
		return nil, err
	}

	r.bind("Object", r.ObjectConstructor)
	r.bind("Array", r.ArrayConstructor)
	r.bind("Math", r.MathObject)
	r.bind("JSON", r.JSONObject)
	r.bind("Error", r.ErrorConstructor)
	r.bind("TypeError", r.TypeErrorConstructor)
	r.bind("ReferenceError", r.ReferenceErrorConstructor)
	r.bind("SyntaxError", r.SyntaxErrorConstructor)
	r.bind("RangeError", r.RangeErrorConstructor)
	r.bind("harden", r.HardenFn)
	r.bind("Compartment", r.CompartmentCtor)
	if !r.lockedDown {
		r.bind("lockdown", r.LockdownFn)
	}

	return r, nil
}

func (r *Realm) newNativeFunction(fn heap.NativeFunc) (heap.Value, error) {
	return r.h.NewFunction(r.FunctionPrototype, fn)
}

func (r *Realm) defineMethod(target heap.Value, name string, fn heap.NativeFunc) error {
	method, err := r.newNativeFunction(fn)
	if err != nil {
		return err
	}
	key := r.h.Atoms().Intern(name)
	return r.h.Object(target.Ref()).Define(key, heap.DataDescriptor(method, true, false, true))
}

func (r *Realm) initObjectPrototype() error {
	hasOwnProperty := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if !receiver.IsObject() || len(args) == 0 {
			return heap.Bool(false), nil
		}
		key := r.atomFromValue(args[0])
		return heap.Bool(r.h.Object(receiver.Ref()).HasOwn(key)), nil
	}
	isPrototypeOf := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) == 0 || !args[0].IsObject() {
			return heap.Bool(false), nil
		}
		cur := r.h.GetPrototype(args[0])
		for cur.IsObject() {
			if heap.SameValue(cur, receiver) {
				return heap.Bool(true), nil
			}
			cur = r.h.GetPrototype(cur)
		}
		return heap.Bool(false), nil
	}
	propertyIsEnumerable := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if !receiver.IsObject() || len(args) == 0 {
			return heap.Bool(false), nil
		}
		key := r.atomFromValue(args[0])
		return heap.Bool(r.h.Object(receiver.Ref()).HasOwn(key)), nil
	}
	valueOf := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		return receiver, nil
	}
	toString := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if !receiver.IsObject() {
			return r.newString("[object Undefined]")
		}
		switch r.h.Object(receiver.Ref()).Class() {
		case heap.ClassArray:
			return r.newString("[object Array]")
		case heap.ClassFunction:
			return r.newString("[object Function]")
		case heap.ClassError:
			return r.newString("[object Error]")
		default:
			return r.newString("[object Object]")
		}
	}

	if err := r.defineMethod(r.ObjectPrototype, "hasOwnProperty", hasOwnProperty); err != nil {
		return err
	}
	if err := r.defineMethod(r.ObjectPrototype, "isPrototypeOf", isPrototypeOf); err != nil {
		return err
	}
	if err := r.defineMethod(r.ObjectPrototype, "propertyIsEnumerable", propertyIsEnumerable); err != nil {
		return err
	}
	if err := r.defineMethod(r.ObjectPrototype, "valueOf", valueOf); err != nil {
		return err
	}
	if err := r.defineMethod(r.ObjectPrototype, "toString", toString); err != nil {
		return err
	}
	return nil
}

// atomFromValue coerces a property-key argument (string-valued primitive
// in this core; §6.3 keeps symbols out of scope) to an atom.
func (r *Realm) atomFromValue(v heap.Value) atom.Atom {
	return r.h.Atoms().Intern(v.String())
}

func (r *Realm) newString(s string) (heap.Value, error) {
	// Strings are a VM/stdlib-level boxed type in a full implementation
	// (§6.3); this core only needs a carrier for diagnostic text, so a
	// code-point sequence is represented as a frozen Array of CodePoint
	// values hung off no special prototype — good enough for toString
	// results nothing in this core inspects structurally.
	ref, err := r.h.NewArray(r.ArrayPrototype, 0)
	if err != nil {
		return heap.Undefined, err
	}
	runes := []rune(s)
	for i, ch := range runes {
		key := r.h.Atoms().Intern(strconv.Itoa(i))
		if err := r.h.Object(ref.Ref()).Define(key, heap.DataDescriptor(heap.CodePoint(ch), true, true, true)); err != nil {
			return heap.Undefined, err
		}
	}
	if err := r.h.SetArrayLength(ref, len(runes)); err != nil {
		return heap.Undefined, err
	}
	if err := r.h.FreezeObject(ref.Ref()); err != nil {
		return heap.Undefined, err
	}
	return ref, nil
}

func (r *Realm) initErrors() error {
	if err := r.wireErrorProto(&r.ErrorPrototype, &r.ErrorConstructor, r.ObjectPrototype, "Error"); err != nil {
		return err
	}
	kinds := []struct {
		proto *heap.Value
		ctor  *heap.Value
		name  string
	}{
		{&r.TypeErrorPrototype, &r.TypeErrorConstructor, "TypeError"},
		{&r.ReferenceErrorPrototype, &r.ReferenceErrorConstructor, "ReferenceError"},
		{&r.SyntaxErrorPrototype, &r.SyntaxErrorConstructor, "SyntaxError"},
		{&r.RangeErrorPrototype, &r.RangeErrorConstructor, "RangeError"},
	}
	for _, k := range kinds {
		if err := r.wireErrorProto(k.proto, k.ctor, r.ErrorPrototype, k.name); err != nil {
			return err
		}
	}
	return nil
}

func (r *Realm) wireErrorProto(proto *heap.Value, ctorField *heap.Value, parent heap.Value, name string) error {
	v, err := r.h.NewObject(parent)
	if err != nil {
		return err
	}
	*proto = v
	nameVal, err := r.newString(name)
	if err != nil {
		return err
	}
	nameAtom := r.h.Atoms().Intern("name")
	if err := r.h.Object(v.Ref()).Define(nameAtom, heap.DataDescriptor(nameVal, true, false, true)); err != nil {
		return err
	}

	ctorProto := *proto
	ctor, err := r.newNativeFunction(func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		ref, err := r.h.NewObject(ctorProto)
		if err != nil {
			return heap.Undefined, err
		}
		if len(args) > 0 {
			msgAtom := r.h.Atoms().Intern("message")
			if err := r.h.Object(ref.Ref()).Define(msgAtom, heap.DataDescriptor(args[0], true, false, true)); err != nil {
				return heap.Undefined, err
			}
		}
		return ref, nil
	})
	if err != nil {
		return err
	}
	protoAtom := r.h.Atoms().Intern("prototype")
	if err := r.h.Object(ctor.Ref()).Define(protoAtom, heap.DataDescriptor(*proto, false, false, false)); err != nil {
		return err
	}
	*ctorField = ctor
	return nil
}

func (r *Realm) initMath() error {
	v, err := r.h.NewObject(r.ObjectPrototype)
	if err != nil {
		return err
	}
	r.MathObject = v

	one := func(f func(float64) float64) heap.NativeFunc {
		return func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
			if len(args) == 0 {
				return heap.Float(math.NaN()), nil
			}
			return heap.Float(f(args[0].AsNumber())), nil
		}
	}
	if err := r.defineMethod(v, "abs", one(math.Abs)); err != nil {
		return err
	}
	if err := r.defineMethod(v, "floor", one(math.Floor)); err != nil {
		return err
	}
	if err := r.defineMethod(v, "ceil", one(math.Ceil)); err != nil {
		return err
	}
	if err := r.defineMethod(v, "sqrt", one(math.Sqrt)); err != nil {
		return err
	}
	maxMin := func(pick func(a, b float64) float64, seed float64) heap.NativeFunc {
		return func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
			acc := seed
			for _, a := range args {
				acc = pick(acc, a.AsNumber())
			}
			return heap.Float(acc), nil
		}
	}
	if err := r.defineMethod(v, "max", maxMin(math.Max, math.Inf(-1))); err != nil {
		return err
	}
	if err := r.defineMethod(v, "min", maxMin(math.Min, math.Inf(1))); err != nil {
		return err
	}

	for name, val := range map[string]float64{"PI": math.Pi, "E": math.E} {
		key := r.h.Atoms().Intern(name)
		if err := r.h.Object(v.Ref()).Define(key, heap.DataDescriptor(heap.Float(val), false, false, false)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Realm) initJSON() error {
	v, err := r.h.NewObject(r.ObjectPrototype)
	if err != nil {
		return err
	}
	r.JSONObject = v

	// A full JSON.stringify/parse needs the VM's string/number coercion
	// rules (§1: that lives in the stdlib-authoring layer); this core
	// wires the JSON object in as an intrinsic so it harden()s and
	// lockdown()s correctly, and gives it the subset (booleans, null,
	// numbers, nested plain objects) this package's own Value/Object can
	// already represent without a VM's help.
	stringify := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) == 0 {
			return heap.Undefined, nil
		}
		s, err := r.jsonStringify(args[0])
		if err != nil {
			return heap.Undefined, err
		}
		return r.newString(s)
	}
	if err := r.defineMethod(v, "stringify", stringify); err != nil {
		return err
	}
	return nil
}

func (r *Realm) jsonStringify(v heap.Value) (string, error) {
	switch v.Kind() {
	case heap.KindUndefined:
		return "null", nil
	case heap.KindNull:
		return "null", nil
	case heap.KindBoolean:
		return v.String(), nil
	case heap.KindInt, heap.KindFloat:
		return v.String(), nil
	case heap.KindPointer:
		obj := r.h.Object(v.Ref())
		if obj.Class() == heap.ClassArray {
			keys := obj.OwnKeys()
			sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				if k == r.h.Atoms().Intern("length") {
					continue
				}
				val, ok := obj.GetOwn(k)
				if !ok {
					continue
				}
				s, err := r.jsonStringify(val)
				if err != nil {
					return "", err
				}
				parts = append(parts, s)
			}
			return "[" + strings.Join(parts, ",") + "]", nil
		}
		parts := make([]string, 0, len(obj.OwnKeys()))
		for _, k := range obj.OwnKeys() {
			val, ok := obj.GetOwn(k)
			if !ok {
				continue
			}
			s, err := r.jsonStringify(val)
			if err != nil {
				return "", err
			}
			parts = append(parts, strconv.Quote(r.h.Atoms().String(k))+":"+s)
		}
		return "{" + strings.Join(parts, ",") + "}", nil
	default:
		return "null", nil
	}
}

func (r *Realm) initRegExp() error {
	compile := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		pattern, flags := "", ""
		if len(args) > 0 {
			pattern = args[0].String()
		}
		if len(args) > 1 {
			flags = args[1].String()
		}
		compiled, err := jsregexp.Compile(pattern, flags)
		if err != nil {
			return heap.Undefined, err
		}
		ref, err := r.h.NewObject(r.RegExpPrototype)
		if err != nil {
			return heap.Undefined, err
		}
		obj := r.h.Object(ref.Ref())
		src, err := r.newString(compiled.Source)
		if err != nil {
			return heap.Undefined, err
		}
		flagsVal, err := r.newString(compiled.FlagString())
		if err != nil {
			return heap.Undefined, err
		}
		if err := obj.Define(r.h.Atoms().Intern("source"), heap.DataDescriptor(src, false, false, false)); err != nil {
			return heap.Undefined, err
		}
		if err := obj.Define(r.h.Atoms().Intern("flags"), heap.DataDescriptor(flagsVal, false, false, false)); err != nil {
			return heap.Undefined, err
		}
		return ref, nil
	}
	ctor, err := r.newNativeFunction(compile)
	if err != nil {
		return err
	}
	protoAtom := r.h.Atoms().Intern("prototype")
	if err := r.h.Object(ctor.Ref()).Define(protoAtom, heap.DataDescriptor(r.RegExpPrototype, false, false, false)); err != nil {
		return err
	}
	r.bind("RegExp", ctor)
	return nil
}

func (r *Realm) initObjectConstructor() error {
	ctor, err := r.newNativeFunction(func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) > 0 && args[0].IsObject() {
			return args[0], nil
		}
		return r.h.NewObject(r.ObjectPrototype)
	})
	if err != nil {
		return err
	}
	r.ObjectConstructor = ctor

	protoAtom := r.h.Atoms().Intern("prototype")
	if err := r.h.Object(ctor.Ref()).Define(protoAtom, heap.DataDescriptor(r.ObjectPrototype, false, false, false)); err != nil {
		return err
	}

	freeze := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) == 0 || !args[0].IsObject() {
			if len(args) == 0 {
				return heap.Undefined, nil
			}
			return args[0], nil
		}
		if err := r.h.Object(args[0].Ref()).Freeze(); err != nil {
			return heap.Undefined, err
		}
		return args[0], nil
	}
	seal := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) == 0 || !args[0].IsObject() {
			if len(args) == 0 {
				return heap.Undefined, nil
			}
			return args[0], nil
		}
		if err := r.h.Object(args[0].Ref()).Seal(); err != nil {
			return heap.Undefined, err
		}
		return args[0], nil
	}
	preventExtensions := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) == 0 || !args[0].IsObject() {
			if len(args) == 0 {
				return heap.Undefined, nil
			}
			return args[0], nil
		}
		r.h.Object(args[0].Ref()).PreventExtensions()
		return args[0], nil
	}
	isFrozen := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) == 0 || !args[0].IsObject() {
			return heap.Bool(true), nil
		}
		return heap.Bool(r.h.Object(args[0].Ref()).IsFrozen()), nil
	}
	isSealed := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) == 0 || !args[0].IsObject() {
			return heap.Bool(true), nil
		}
		return heap.Bool(r.h.Object(args[0].Ref()).IsSealed()), nil
	}
	isExtensible := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) == 0 || !args[0].IsObject() {
			return heap.Bool(false), nil
		}
		return heap.Bool(r.h.Object(args[0].Ref()).IsExtensible()), nil
	}
	getPrototypeOf := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) == 0 {
			return heap.Null, nil
		}
		return r.h.GetPrototype(args[0]), nil
	}
	setPrototypeOf := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) < 2 {
			return heap.Undefined, nil
		}
		if err := r.h.SetPrototype(args[0], args[1]); err != nil {
			return heap.Undefined, err
		}
		return args[0], nil
	}
	keys := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) == 0 || !args[0].IsObject() {
			return r.newEmptyArray()
		}
		obj := r.h.Object(args[0].Ref())
		var names []string
		for _, k := range obj.OwnKeys() {
			names = append(names, r.h.Atoms().String(k))
		}
		return r.newStringArray(names)
	}
	create := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		proto := heap.Null
		if len(args) > 0 {
			proto = args[0]
		}
		return r.h.NewObject(proto)
	}
	for name, fn := range map[string]heap.NativeFunc{
		"freeze": freeze, "seal": seal, "preventExtensions": preventExtensions,
		"isFrozen": isFrozen, "isSealed": isSealed, "isExtensible": isExtensible,
		"getPrototypeOf": getPrototypeOf, "setPrototypeOf": setPrototypeOf,
		"keys": keys, "create": create,
	} {
		if err := r.defineMethod(ctor, name, fn); err != nil {
			return err
		}
	}
	return nil
}

func (r *Realm) newEmptyArray() (heap.Value, error) {
	return r.h.NewArray(r.ArrayPrototype, 0)
}

func (r *Realm) newStringArray(items []string) (heap.Value, error) {
	ref, err := r.h.NewArray(r.ArrayPrototype, len(items))
	if err != nil {
		return heap.Undefined, err
	}
	for i, s := range items {
		sv, err := r.newString(s)
		if err != nil {
			return heap.Undefined, err
		}
		key := r.h.Atoms().Intern(strconv.Itoa(i))
		if err := r.h.Object(ref.Ref()).Define(key, heap.DataDescriptor(sv, true, true, true)); err != nil {
			return heap.Undefined, err
		}
	}
	return ref, nil
}

func (r *Realm) initArray() error {
	ctor, err := r.newNativeFunction(func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		length := 0
		if len(args) == 1 && args[0].IsNumber() {
			length = int(args[0].AsNumber())
		}
		ref, err := r.h.NewArray(r.ArrayPrototype, length)
		if err != nil {
			return heap.Undefined, err
		}
		if len(args) > 1 || (len(args) == 1 && !args[0].IsNumber()) {
			obj := r.h.Object(ref.Ref())
			for i, a := range args {
				key := r.h.Atoms().Intern(strconv.Itoa(i))
				if err := obj.Define(key, heap.DataDescriptor(a, true, true, true)); err != nil {
					return heap.Undefined, err
				}
			}
			if err := r.h.SetArrayLength(ref, len(args)); err != nil {
				return heap.Undefined, err
			}
		}
		return ref, nil
	})
	if err != nil {
		return err
	}
	r.ArrayConstructor = ctor
	protoAtom := r.h.Atoms().Intern("prototype")
	if err := r.h.Object(ctor.Ref()).Define(protoAtom, heap.DataDescriptor(r.ArrayPrototype, false, false, false)); err != nil {
		return err
	}

	push := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if !receiver.IsObject() {
			return heap.Int(0), nil
		}
		obj := r.h.Object(receiver.Ref())
		n := obj.ArrayLength()
		for _, a := range args {
			key := r.h.Atoms().Intern(strconv.Itoa(n))
			if err := obj.Define(key, heap.DataDescriptor(a, true, true, true)); err != nil {
				return heap.Undefined, err
			}
			n++
		}
		if err := r.h.SetArrayLength(receiver, n); err != nil {
			return heap.Undefined, err
		}
		return heap.Int(int64(n)), nil
	}
	return r.defineMethod(r.ArrayPrototype, "push", push)
}

func (r *Realm) initGlobalFunctions() error {
	parseInt := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) == 0 {
			return heap.Float(math.NaN()), nil
		}
		s := strings.TrimSpace(args[0].String())
		radix := 10
		if len(args) > 1 && args[1].IsNumber() {
			if rdx := int(args[1].AsNumber()); rdx != 0 {
				radix = rdx
			}
		}
		n, err := strconv.ParseInt(s, radix, 64)
		if err != nil {
			return heap.Float(math.NaN()), nil
		}
		return heap.Int(n), nil
	}
	parseFloat := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) == 0 {
			return heap.Float(math.NaN()), nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(args[0].String()), 64)
		if err != nil {
			return heap.Float(math.NaN()), nil
		}
		return heap.Float(f), nil
	}
	isNaN := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) == 0 {
			return heap.Bool(true), nil
		}
		return heap.Bool(math.IsNaN(args[0].AsNumber())), nil
	}
	isFinite := func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) == 0 {
			return heap.Bool(false), nil
		}
		f := args[0].AsNumber()
		return heap.Bool(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
	}

	for name, fn := range map[string]heap.NativeFunc{
		"parseInt": parseInt, "parseFloat": parseFloat, "isNaN": isNaN, "isFinite": isFinite,
	} {
		v, err := r.newNativeFunction(fn)
		if err != nil {
			return err
		}
		r.bind(name, v)
	}
	return nil
}

func (r *Realm) initHardenAndLockdown() error {
	hardenFn, err := r.newNativeFunction(func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		if len(args) == 0 {
			return heap.Undefined, nil
		}
		return harden.Harden(r.h, args[0])
	})
	if err != nil {
		return err
	}
	r.HardenFn = hardenFn

	lockdownFn, err := r.newNativeFunction(func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		return heap.Undefined, r.Lockdown()
	})
	if err != nil {
		return err
	}
	r.LockdownFn = lockdownFn

	compartmentCtor, err := r.newNativeFunction(func(receiver heap.Value, args []heap.Value) (heap.Value, error) {
		// A Compartment constructed from script is a VM/embedding-level
		// concern (§4.3 leaves the exact API to the host); the intrinsic
		// is wired in so it participates in hardening/lockdown even
		// though this core's own host API (pkg/compartment/pkg/engine)
		// is how Go callers actually create one.
		return heap.Undefined, coreerrors.NewTypeError("Compartment must be constructed by the host, not from script")
	})
	if err != nil {
		return err
	}
	r.CompartmentCtor = compartmentCtor
	return nil
}

// Lockdown implements §4.4: latches locked_down, then hardens every
// intrinsic — the Realm's own roots, which after lockdown is the
// complete primordial set every compartment will ever start from.
// A second call is a no-op TypeError, matching §4.4's "idempotent
// failure" framing: nothing re-hardens, and the caller is told so.
func (r *Realm) Lockdown() error {
	if r.lockedDown {
		return coreerrors.NewTypeError("lockdown has already been called on this realm")
	}
	r.lockedDown = true

	for _, v := range r.Roots() {
		if _, err := harden.Harden(r.h, *v); err != nil {
			return err
		}
	}
	return nil
}
