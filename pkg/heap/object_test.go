package heap

import (
	"testing"

	"ward/pkg/atom"
)

func newTestObject() (*Object, *atom.Table) {
	tbl := atom.NewTable()
	return newObject(ClassOrdinary, Null), tbl
}

func TestObject_DefineCreatesProperty(t *testing.T) {
	obj, tbl := newTestObject()
	k := tbl.Intern("x")
	if err := obj.Define(k, DataDescriptor(Int(1), true, true, true)); err != nil {
		t.Fatalf("Define failed: %v", err)
	}
	v, ok := obj.GetOwn(k)
	if !ok || v.AsInt() != 1 {
		t.Errorf("GetOwn(%q) = (%v, %v), want (1, true)", "x", v, ok)
	}
}

func TestObject_DefineOnNonExtensibleRejectsNewProperty(t *testing.T) {
	obj, tbl := newTestObject()
	obj.PreventExtensions()
	k := tbl.Intern("x")
	if err := obj.Define(k, DataDescriptor(Int(1), true, true, true)); err == nil {
		t.Error("expected Define of a new key on a non-extensible object to fail")
	}
}

func TestObject_RedefineNonConfigurableRejectsValueChangeWhenNotWritable(t *testing.T) {
	obj, tbl := newTestObject()
	k := tbl.Intern("x")
	if err := obj.Define(k, DataDescriptor(Int(1), false, true, false)); err != nil {
		t.Fatalf("initial Define failed: %v", err)
	}
	if err := obj.Define(k, DataDescriptor(Int(2), false, true, false)); err == nil {
		t.Error("expected redefining a non-configurable, non-writable property's value to fail")
	}
	// Redefining with the SAME value must succeed (§4.2.2 compatibility).
	if err := obj.Define(k, DataDescriptor(Int(1), false, true, false)); err != nil {
		t.Errorf("expected redefining with an identical value to succeed, got %v", err)
	}
}

func TestObject_RedefineNonConfigurableCannotFlipConfigurable(t *testing.T) {
	obj, tbl := newTestObject()
	k := tbl.Intern("x")
	if err := obj.Define(k, DataDescriptor(Int(1), true, true, false)); err != nil {
		t.Fatalf("initial Define failed: %v", err)
	}
	if err := obj.Define(k, DataDescriptor(Int(1), true, true, true)); err == nil {
		t.Error("expected flipping configurable from false to true to fail")
	}
}

func TestObject_RedefineNonConfigurableCanFlipWritableFalseToTrueIsRejected(t *testing.T) {
	obj, tbl := newTestObject()
	k := tbl.Intern("x")
	if err := obj.Define(k, DataDescriptor(Int(1), false, true, false)); err != nil {
		t.Fatalf("initial Define failed: %v", err)
	}
	if err := obj.Define(k, DataDescriptor(Int(1), true, true, false)); err == nil {
		t.Error("expected flipping writable false->true on a non-configurable property to fail")
	}
}

func TestObject_DeleteOwn(t *testing.T) {
	obj, tbl := newTestObject()
	k := tbl.Intern("x")
	obj.Define(k, DataDescriptor(Int(1), true, true, true))
	if err := obj.DeleteOwn(k); err != nil {
		t.Fatalf("DeleteOwn failed: %v", err)
	}
	if obj.HasOwn(k) {
		t.Error("expected property to be gone after DeleteOwn")
	}
}

func TestObject_DeleteOwnNonConfigurableFails(t *testing.T) {
	obj, tbl := newTestObject()
	k := tbl.Intern("x")
	obj.Define(k, DataDescriptor(Int(1), true, true, false))
	if err := obj.DeleteOwn(k); err == nil {
		t.Error("expected DeleteOwn on a non-configurable property to fail")
	}
}

func TestObject_DeleteOwnAbsentIsNoop(t *testing.T) {
	obj, tbl := newTestObject()
	k := tbl.Intern("never-set")
	if err := obj.DeleteOwn(k); err != nil {
		t.Errorf("expected deleting an absent property to succeed as a no-op, got %v", err)
	}
}

func TestObject_SealThenSubsequentDefineOfNewKeyFails(t *testing.T) {
	obj, tbl := newTestObject()
	k := tbl.Intern("x")
	obj.Define(k, DataDescriptor(Int(1), true, true, true))
	if err := obj.Seal(); err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if !obj.IsSealed() {
		t.Error("expected IsSealed true after Seal")
	}
	if obj.IsFrozen() {
		t.Error("Seal should not imply Frozen when the property stayed writable")
	}
	// Existing data is still writable.
	if err := obj.Define(k, DataDescriptor(Int(2), true, true, false)); err != nil {
		t.Errorf("expected writable value change on sealed-but-still-writable property to succeed, got %v", err)
	}
	newKey := tbl.Intern("y")
	if err := obj.Define(newKey, DataDescriptor(Int(3), true, true, true)); err == nil {
		t.Error("expected Define of a new key after Seal to fail")
	}
}

func TestObject_FreezeMakesDataPropertiesNonWritable(t *testing.T) {
	obj, tbl := newTestObject()
	k := tbl.Intern("x")
	obj.Define(k, DataDescriptor(Int(1), true, true, true))
	if err := obj.Freeze(); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}
	if !obj.IsFrozen() {
		t.Error("expected IsFrozen true after Freeze")
	}
	if err := obj.Define(k, DataDescriptor(Int(2), true, true, false)); err == nil {
		t.Error("expected changing a frozen data property's value to fail")
	}
}

func TestObject_IsFrozenOnEmptyNonExtensibleObject(t *testing.T) {
	obj, _ := newTestObject()
	obj.PreventExtensions()
	if !obj.IsSealed() || !obj.IsFrozen() {
		t.Error("an empty non-extensible object is vacuously sealed and frozen")
	}
}

func TestObject_ChildrenOrderPrototypeThenPropsThenGetterSetter(t *testing.T) {
	proto := newObject(ClassOrdinary, Null)
	_ = proto
	tbl := atom.NewTable()

	child := newObject(ClassOrdinary, pointer(1))
	k1 := tbl.Intern("a")
	k2 := tbl.Intern("b")
	child.Define(k1, DataDescriptor(pointer(2), true, true, true))
	child.Define(k2, AccessorDescriptor(pointer(3), pointer(4), true, true))

	kids := child.Children()
	want := []Ref{1, 2, 3, 4}
	if len(kids) != len(want) {
		t.Fatalf("Children() = %v, want %v", kids, want)
	}
	for i, k := range kids {
		if k != want[i] {
			t.Errorf("Children()[%d] = %d, want %d", i, k, want[i])
		}
	}
}

func TestObject_OwnKeysInsertionOrder(t *testing.T) {
	obj, tbl := newTestObject()
	names := []string{"z", "a", "m"}
	for _, n := range names {
		obj.Define(tbl.Intern(n), DataDescriptor(Int(1), true, true, true))
	}
	keys := obj.OwnKeys()
	for i, k := range keys {
		if tbl.String(k) != names[i] {
			t.Errorf("OwnKeys()[%d] = %q, want %q", i, tbl.String(k), names[i])
		}
	}
}
