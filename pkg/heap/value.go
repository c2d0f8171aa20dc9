// Package heap implements §3.2's managed heap and §3.1's Value, together
// with the object model of §3.4/§4.2, because the tracer, the property
// table and the pointer-rewrite-on-compaction rule are tightly coupled
// (§1: "this is the hardest part of the repository").
package heap

import (
	"math"
	"strconv"
)

// Kind discriminates the variants of §3.1's tagged Value. Go has no
// machine union, so — exactly as the teacher's vm.Value does with its
// ValueType + "as struct{...}" pair — Kind plus a pair of payload fields
// stands in for the single tagged word the reference implementation packs
// into a machine register.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindInt       // small-integer variant
	KindCodePoint // Unicode code point variant
	KindFloat     // short-float variant (word >= 64 bits, per §3.1)
	KindPointer   // heap-pointer variant; payload is a Ref
)

// Value is the word-sized tagged datum of §3.1. Non-pointer kinds carry
// their payload directly in bits; KindPointer carries a Ref, which the
// collector rewrites in place when its target relocates (§3.2).
type Value struct {
	kind Kind
	bits uint64 // bool(0/1), int64 bits, rune, or float64 bits
	ref  Ref
}

// Undefined, Null and Bool mirror the teacher's Value
// constructor style (vm.Undefined(), vm.Null(), vm.Bool(...)).
var Undefined = Value{kind: KindUndefined}
var Null = Value{kind: KindNull}

func Bool(b bool) Value {
	v := Value{kind: KindBoolean}
	if b {
		v.bits = 1
	}
	return v
}

func Int(n int64) Value {
	return Value{kind: KindInt, bits: uint64(n)}
}

func CodePoint(r rune) Value {
	return Value{kind: KindCodePoint, bits: uint64(uint32(r))}
}

func Float(f float64) Value {
	return Value{kind: KindFloat, bits: math.Float64bits(f)}
}

func pointer(r Ref) Value {
	return Value{kind: KindPointer, ref: r}
}

// Kind reports which §3.1 variant this Value holds.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsNullish() bool   { return v.kind == KindUndefined || v.kind == KindNull }
func (v Value) IsBoolean() bool   { return v.kind == KindBoolean }
func (v Value) IsInt() bool       { return v.kind == KindInt }
func (v Value) IsCodePoint() bool { return v.kind == KindCodePoint }
func (v Value) IsFloat() bool     { return v.kind == KindFloat }
func (v Value) IsNumber() bool    { return v.kind == KindInt || v.kind == KindFloat }
func (v Value) IsObject() bool    { return v.kind == KindPointer }

func (v Value) AsBool() bool       { return v.bits != 0 }
func (v Value) AsInt() int64       { return int64(v.bits) }
func (v Value) AsCodePoint() rune  { return rune(uint32(v.bits)) }
func (v Value) AsFloat() float64   { return math.Float64frombits(v.bits) }

// AsNumber widens either numeric variant to float64, the common case for
// arithmetic hooks a host VM would drive through the core.
func (v Value) AsNumber() float64 {
	if v.kind == KindInt {
		return float64(int64(v.bits))
	}
	return math.Float64frombits(v.bits)
}

// Ref returns the heap reference a KindPointer Value carries. Calling it
// on any other Kind returns the zero Ref (never a valid allocation).
func (v Value) Ref() Ref {
	if v.kind != KindPointer {
		return 0
	}
	return v.ref
}

// Truthy implements the boolean coercion the object model needs for
// things like extensibility gates; null/false/0/NaN/undefined are falsey,
// everything else (including every object, per §6.3 no boxing) is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindUndefined, KindNull:
		return false
	case KindBoolean:
		return v.bits != 0
	case KindInt:
		return int64(v.bits) != 0
	case KindFloat:
		f := v.AsFloat()
		return f != 0 && !math.IsNaN(f)
	default:
		return true
	}
}

// SameValue implements the SameValue-style equality §3.1 specifies:
// NaN equals NaN, +0 is distinguished from -0.
func SameValue(a, b Value) bool {
	if a.kind != b.kind {
		// int/float cross-kind numbers are still compared numerically,
		// matching SameValue's treatment of Number as one type.
		if a.IsNumber() && b.IsNumber() {
			return sameNumber(a.AsFloat0(), b.AsFloat0())
		}
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.bits == b.bits
	case KindInt:
		return a.bits == b.bits
	case KindCodePoint:
		return a.bits == b.bits
	case KindFloat:
		return sameNumber(a.AsFloat(), b.AsFloat())
	case KindPointer:
		return a.ref == b.ref
	default:
		return false
	}
}

// AsFloat0 widens an Int or Float Value honoring the -0/+0 distinction
// that plain float64 conversion of an int can never produce.
func (v Value) AsFloat0() float64 {
	if v.kind == KindInt {
		return float64(int64(v.bits))
	}
	return v.AsFloat()
}

func sameNumber(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	if a == 0 && b == 0 {
		// divided-by-reciprocal distinguishes +0 from -0, per §3.1.
		return math.Signbit(1/a) == math.Signbit(1/b)
	}
	return a == b
}

// String renders a Value for diagnostics. It never allocates on the heap
// and never invokes a toString hook — that is a VM/stdlib concern (§1).
func (v Value) String() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.AsInt(), 10)
	case KindCodePoint:
		return string(v.AsCodePoint())
	case KindFloat:
		return strconv.FormatFloat(v.AsFloat(), 'g', -1, 64)
	case KindPointer:
		return "[object]"
	default:
		return "<invalid value>"
	}
}
