package heap

import (
	"ward/pkg/atom"
	coreerrors "ward/pkg/errors"
)

// Object has no atom table of its own (§3.4's property table only stores
// atom handles), so the messages raised at this layer name the property by
// its numeric atom id. Heap-level callers (heap.go) pass these errors on
// unchanged and do not resolve the id to its string.

func errNotExtensible(key atom.Atom) error {
	return coreerrors.NewTypeError("cannot add property (atom %d): object is not extensible", key)
}

func errRedefineNonConfigurable(key atom.Atom) error {
	return coreerrors.NewTypeError("cannot redefine non-configurable property (atom %d)", key)
}

func errDeleteNonConfigurable(key atom.Atom) error {
	return coreerrors.NewTypeError("cannot delete non-configurable property (atom %d)", key)
}

func errAssignReadOnly(key atom.Atom) error {
	return coreerrors.NewTypeError("cannot assign to read only property (atom %d)", key)
}

func errAssignAccessorNoSetter(key atom.Atom) error {
	return coreerrors.NewTypeError("cannot set property (atom %d) which has only a getter", key)
}

func errSetPrototypeNonExtensible() error {
	return coreerrors.NewTypeError("cannot set prototype of a non-extensible object")
}

func errPrototypeCycle() error {
	return coreerrors.NewTypeError("cyclic prototype chain")
}

func errNotCallable() error {
	return coreerrors.NewTypeError("value is not callable")
}
