package heap

import (
	"math"
	"testing"
)

func TestSameValue_NaNEqualsNaN(t *testing.T) {
	a := Float(math.NaN())
	b := Float(math.NaN())
	if !SameValue(a, b) {
		t.Error("expected SameValue(NaN, NaN) to be true")
	}
}

func TestSameValue_PositiveAndNegativeZero(t *testing.T) {
	pos := Float(0)
	neg := Float(math.Copysign(0, -1))
	if SameValue(pos, neg) {
		t.Error("expected SameValue(+0, -0) to be false")
	}
	if !SameValue(pos, pos) {
		t.Error("expected SameValue(+0, +0) to be true")
	}
}

func TestSameValue_CrossKindNumbers(t *testing.T) {
	i := Int(5)
	f := Float(5)
	if !SameValue(i, f) {
		t.Error("expected an Int and a Float holding the same number to be SameValue")
	}
}

func TestSameValue_DifferentKinds(t *testing.T) {
	if SameValue(Undefined, Null) {
		t.Error("expected Undefined and Null to differ")
	}
	if SameValue(Bool(true), Int(1)) {
		t.Error("expected Bool(true) and Int(1) to differ under SameValue")
	}
}

func TestValue_Truthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Undefined, false},
		{Null, false},
		{Bool(false), false},
		{Bool(true), true},
		{Int(0), false},
		{Int(1), true},
		{Float(0), false},
		{Float(math.NaN()), false},
		{Float(1.5), true},
	}
	for _, c := range cases {
		if got := c.v.Truthy(); got != c.want {
			t.Errorf("Truthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestValue_KindPredicates(t *testing.T) {
	if !Int(3).IsNumber() || !Float(3).IsNumber() {
		t.Error("expected Int and Float to both report IsNumber")
	}
	if Int(3).IsObject() {
		t.Error("expected Int to not be an object")
	}
	if !Undefined.IsNullish() || !Null.IsNullish() {
		t.Error("expected Undefined and Null to both be nullish")
	}
}

func TestValue_RefOnNonPointerIsZero(t *testing.T) {
	if Int(5).Ref() != 0 {
		t.Error("expected Ref() on a non-pointer Value to be 0")
	}
}
