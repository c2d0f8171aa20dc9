package jsregexp

import "testing"

func TestCompile_RejectsUnknownFlag(t *testing.T) {
	if _, err := Compile("abc", "z"); err == nil {
		t.Error("expected an unrecognized flag to fail compilation with a syntax error")
	}
}

func TestCompile_RejectsInvalidPattern(t *testing.T) {
	if _, err := Compile("(", ""); err == nil {
		t.Error("expected an unbalanced group to fail compilation")
	}
}

func TestFlagString_CanonicalOrder(t *testing.T) {
	c, err := Compile("a", "ymig")
	if err != nil {
		t.Fatal(err)
	}
	if got := c.FlagString(); got != "gimy" {
		t.Errorf("FlagString() = %q, want %q", got, "gimy")
	}
}

func TestExec_FindsMatchAndGroups(t *testing.T) {
	c, err := Compile(`(\d+)-(\d+)`, "")
	if err != nil {
		t.Fatal(err)
	}
	m, err := c.Exec("order 12-34 done", 0)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Text != "12-34" {
		t.Errorf("Text = %q, want %q", m.Text, "12-34")
	}
	if len(m.Groups) != 3 || m.Groups[1] != "12" || m.Groups[2] != "34" {
		t.Errorf("Groups = %v, want [12-34 12 34]", m.Groups)
	}
}

func TestExec_NoMatchReturnsNil(t *testing.T) {
	c, err := Compile(`xyz`, "")
	if err != nil {
		t.Fatal(err)
	}
	m, err := c.Exec("abc", 0)
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Error("expected no match to return a nil result")
	}
}

func TestExec_StartAtOffset(t *testing.T) {
	c, err := Compile(`a`, "")
	if err != nil {
		t.Fatal(err)
	}
	m, err := c.Exec("banana", 2)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil || m.Index < 2 {
		t.Errorf("expected the match to start at or after offset 2, got %+v", m)
	}
}

func TestTest_ReportsMatchPresence(t *testing.T) {
	c, err := Compile(`^\d+$`, "")
	if err != nil {
		t.Fatal(err)
	}
	ok, err := c.Test("12345")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected Test to report a match for an all-digit string")
	}
	ok, err = c.Test("12a45")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected Test to report no match for a non-digit string")
	}
}

func TestCompile_IgnoreCaseFlag(t *testing.T) {
	c, err := Compile("hello", "i")
	if err != nil {
		t.Fatal(err)
	}
	ok, err := c.Test("HELLO world")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected the i flag to make matching case-insensitive")
	}
}
