package compartment

import (
	"testing"

	"ward/pkg/heap"
	"ward/pkg/realm"
)

func newTestRealm(t *testing.T) (*heap.Heap, *realm.Realm) {
	t.Helper()
	h := heap.New(1 << 14)
	r, err := realm.New(h)
	if err != nil {
		t.Fatal(err)
	}
	return h, r
}

func TestNew_GlobalThisSeededFromRealmTemplate(t *testing.T) {
	h, r := newTestRealm(t)
	c, err := New(h, r, Options{})
	if err != nil {
		t.Fatal(err)
	}
	key := h.Atoms().Intern("Object")
	if !h.Has(c.GlobalThis(), key) {
		t.Error("expected globalThis to carry the realm's Object binding")
	}
	v, err := h.Get(c.GlobalThis(), key)
	if err != nil {
		t.Fatal(err)
	}
	if !heap.SameValue(v, r.ObjectConstructor) {
		t.Error("expected globalThis's Object binding to be the same intrinsic Value as the realm's")
	}
}

func TestNew_TwoCompartmentsShareIntrinsicsButNotGlobalThis(t *testing.T) {
	h, r := newTestRealm(t)
	a, err := New(h, r, Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(h, r, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if heap.SameValue(a.GlobalThis(), b.GlobalThis()) {
		t.Error("expected each compartment to get its own distinct globalThis object")
	}
	key := h.Atoms().Intern("Array")
	va, _ := h.Get(a.GlobalThis(), key)
	vb, _ := h.Get(b.GlobalThis(), key)
	if !heap.SameValue(va, vb) {
		t.Error("expected both compartments' Array binding to be the same shared intrinsic")
	}
}

func TestNew_PerCompartmentGlobalOverride(t *testing.T) {
	h, r := newTestRealm(t)
	extra, _ := h.NewObject(r.ObjectPrototype)
	c, err := New(h, r, Options{Globals: map[string]heap.Value{"extra": extra}})
	if err != nil {
		t.Fatal(err)
	}
	key := h.Atoms().Intern("extra")
	got, err := h.Get(c.GlobalThis(), key)
	if err != nil {
		t.Fatal(err)
	}
	if !heap.SameValue(got, extra) {
		t.Error("expected the per-compartment global override to be visible on globalThis")
	}
}

func TestGlobalThisSelfReference(t *testing.T) {
	h, r := newTestRealm(t)
	c, err := New(h, r, Options{})
	if err != nil {
		t.Fatal(err)
	}
	key := h.Atoms().Intern("globalThis")
	v, err := h.Get(c.GlobalThis(), key)
	if err != nil {
		t.Fatal(err)
	}
	if !heap.SameValue(v, c.GlobalThis()) {
		t.Error("expected globalThis.globalThis to point back at itself")
	}
}

func TestLexicalBindings_NotInstalledOnGlobalThis(t *testing.T) {
	h, r := newTestRealm(t)
	v, _ := h.NewObject(r.ObjectPrototype)
	c, err := New(h, r, Options{GlobalLexicals: map[string]heap.Value{"x": v}})
	if err != nil {
		t.Fatal(err)
	}
	key := h.Atoms().Intern("x")
	if h.Has(c.GlobalThis(), key) {
		t.Error("expected a lexical binding to not become a globalThis property")
	}
	got, ok := c.LookupLexical("x")
	if !ok || !heap.SameValue(got, v) {
		t.Error("expected LookupLexical to find the lexical binding")
	}
}

func TestSetLexical_RejectsUnknownAndNonWritable(t *testing.T) {
	h, r := newTestRealm(t)
	v, _ := h.NewObject(r.ObjectPrototype)
	c, err := New(h, r, Options{GlobalLexicals: map[string]heap.Value{"x": v}})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetLexical("neverDeclared", v); err == nil {
		t.Error("expected SetLexical on an unbound name to fail with a ReferenceError")
	}
	// GlobalLexicals installs bindings as writable via defineLexical(..., true).
	if err := c.SetLexical("x", heap.Int(1)); err != nil {
		t.Errorf("expected SetLexical on a writable lexical to succeed, got %v", err)
	}
	got, _ := c.LookupLexical("x")
	if got.AsInt() != 1 {
		t.Error("expected SetLexical to update the lexical binding's value")
	}
	c.defineLexical("k", v, false)
	if err := c.SetLexical("k", heap.Int(2)); err == nil {
		t.Error("expected SetLexical on a non-writable lexical to fail with a TypeError")
	}
}

func TestResolveIdentifier_LexicalShadowsGlobal(t *testing.T) {
	h, r := newTestRealm(t)
	c, err := New(h, r, Options{GlobalLexicals: map[string]heap.Value{"Object": heap.Int(7)}})
	if err != nil {
		t.Fatal(err)
	}
	v, err := c.ResolveIdentifier("Object")
	if err != nil {
		t.Fatal(err)
	}
	if v.AsInt() != 7 {
		t.Error("expected a lexical binding to shadow a same-named global")
	}
}

func TestResolveIdentifier_FallsThroughToGlobalThisThenFails(t *testing.T) {
	h, r := newTestRealm(t)
	c, err := New(h, r, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.ResolveIdentifier("Array"); err != nil {
		t.Errorf("expected Array to resolve via globalThis, got %v", err)
	}
	if _, err := c.ResolveIdentifier("neverDeclared"); err == nil {
		t.Error("expected resolving an unbound identifier to fail with a ReferenceError")
	}
}

func TestThisValue_NullWithoutLexicalsGlobalThisWithLexicals(t *testing.T) {
	h, r := newTestRealm(t)
	plain, err := New(h, r, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if plain.ThisValue() != heap.Null {
		t.Error("expected ThisValue() to be Null for a compartment with no lexical bindings")
	}
	withLex, err := New(h, r, Options{GlobalLexicals: map[string]heap.Value{"x": heap.Int(1)}})
	if err != nil {
		t.Fatal(err)
	}
	if !heap.SameValue(withLex.ThisValue(), withLex.GlobalThis()) {
		t.Error("expected ThisValue() to be globalThis for a compartment with lexical bindings")
	}
}

func TestEvaluate_FailsWithoutEvaluator(t *testing.T) {
	h, r := newTestRealm(t)
	c, err := New(h, r, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Evaluate("1+1"); err == nil {
		t.Error("expected Evaluate without a configured Evaluator to fail")
	}
}
