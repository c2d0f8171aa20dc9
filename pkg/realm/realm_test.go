package realm

import (
	"testing"

	"ward/pkg/heap"
)

func TestNew_BuildsPrototypeChain(t *testing.T) {
	h := heap.New(1 << 14)
	r, err := New(h)
	if err != nil {
		t.Fatal(err)
	}
	if h.GetPrototype(r.ObjectPrototype) != heap.Null {
		t.Error("expected Object.prototype's prototype to be Null")
	}
	if h.GetPrototype(r.ArrayPrototype) != r.ObjectPrototype {
		t.Error("expected Array.prototype's prototype to be Object.prototype")
	}
	if h.GetPrototype(r.TypeErrorPrototype) != r.ErrorPrototype {
		t.Error("expected TypeError.prototype's prototype to be Error.prototype")
	}
}

func TestNew_GlobalsIncludeIntrinsics(t *testing.T) {
	h := heap.New(1 << 14)
	r, err := New(h)
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, b := range r.Globals() {
		names[b.Name] = true
	}
	for _, want := range []string{"Object", "Array", "Math", "JSON", "harden", "lockdown", "Compartment", "TypeError"} {
		if !names[want] {
			t.Errorf("expected %q to be present in the realm's global template", want)
		}
	}
}

func TestLockdown_HardensIntrinsics(t *testing.T) {
	h := heap.New(1 << 14)
	r, err := New(h)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Lockdown(); err != nil {
		t.Fatal(err)
	}
	if !h.Object(r.ObjectPrototype.Ref()).IsFrozen() {
		t.Error("expected Object.prototype to be frozen after lockdown")
	}
	if !h.Object(r.ArrayPrototype.Ref()).IsFrozen() {
		t.Error("expected Array.prototype to be frozen after lockdown")
	}
}

func TestLockdown_IsOneShot(t *testing.T) {
	h := heap.New(1 << 14)
	r, err := New(h)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Lockdown(); err != nil {
		t.Fatal(err)
	}
	if err := r.Lockdown(); err == nil {
		t.Error("expected a second lockdown call to fail")
	}
}

func TestLockdown_RemovesLockdownFromFutureGlobalsTemplate(t *testing.T) {
	h := heap.New(1 << 14)
	r, err := New(h)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Lockdown(); err != nil {
		t.Fatal(err)
	}
	for _, b := range r.Globals() {
		if b.Name == "lockdown" {
			t.Error("expected lockdown binding to be absent from the globals template after lockdown")
		}
	}
}

func TestObjectConstructor_FreezeAndIsFrozen(t *testing.T) {
	h := heap.New(1 << 14)
	r, err := New(h)
	if err != nil {
		t.Fatal(err)
	}
	obj, err := h.NewObject(r.ObjectPrototype)
	if err != nil {
		t.Fatal(err)
	}
	freeze, _ := h.Get(r.ObjectConstructor, h.Atoms().Intern("freeze"))
	isFrozen, _ := h.Get(r.ObjectConstructor, h.Atoms().Intern("isFrozen"))

	if _, err := h.Call(freeze, heap.Undefined, []heap.Value{obj}); err != nil {
		t.Fatal(err)
	}
	result, err := h.Call(isFrozen, heap.Undefined, []heap.Value{obj})
	if err != nil {
		t.Fatal(err)
	}
	if !result.AsBool() {
		t.Error("expected Object.isFrozen(obj) to be true after Object.freeze(obj)")
	}
}

func TestHardenGlobal_FreezesTransitively(t *testing.T) {
	h := heap.New(1 << 14)
	r, err := New(h)
	if err != nil {
		t.Fatal(err)
	}
	parent, _ := h.NewObject(r.ObjectPrototype)
	child, _ := h.NewObject(r.ObjectPrototype)
	h.Set(parent, h.Atoms().Intern("child"), child)

	if _, err := h.Call(r.HardenFn, heap.Undefined, []heap.Value{parent}); err != nil {
		t.Fatal(err)
	}
	if !h.Object(child.Ref()).IsFrozen() {
		t.Error("expected the global harden() function to freeze reachable children")
	}
}
