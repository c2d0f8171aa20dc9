// Package jsregexp wraps github.com/dlclark/regexp2 into the small
// surface the RegExp intrinsic's internal slot needs: a compiled pattern
// plus the flag bits the source field exposes, without dragging a second
// regex compiler's error taxonomy into callers.
package jsregexp

import (
	"strings"

	"github.com/dlclark/regexp2"
	coreerrors "ward/pkg/errors"
)

// Flags are the ECMAScript RegExp flags this core recognizes (§6.2).
type Flags struct {
	Global     bool
	IgnoreCase bool
	Multiline  bool
	DotAll     bool
	Unicode    bool
	Sticky     bool
}

// Compiled is a parsed RegExp's internal slot: the pattern plus its flags.
type Compiled struct {
	Source string
	Flags  Flags
	re     *regexp2.Regexp
}

// Compile parses flagStr (any combination of "gimsuy") and builds the
// regexp2.Regexp backing a RegExp object, using the ECMAScript option so
// character classes, anchors and backreferences follow JS semantics
// rather than .NET's.
func Compile(pattern, flagStr string) (*Compiled, error) {
	var f Flags
	var opts regexp2.RegexOptions = regexp2.ECMAScript
	for _, c := range flagStr {
		switch c {
		case 'g':
			f.Global = true
		case 'i':
			f.IgnoreCase = true
			opts |= regexp2.IgnoreCase
		case 'm':
			f.Multiline = true
			opts |= regexp2.Multiline
		case 's':
			f.DotAll = true
			opts |= regexp2.Singleline
		case 'u':
			f.Unicode = true
		case 'y':
			f.Sticky = true
		default:
			return nil, coreerrors.NewSyntaxError("invalid regular expression flag %q", string(c))
		}
	}

	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, coreerrors.NewSyntaxError("invalid regular expression: %s", err.Error())
	}
	return &Compiled{Source: pattern, Flags: f, re: re}, nil
}

// FlagString reconstructs the flags string in canonical gimsuy order,
// matching the order a RegExp's "flags" accessor reports them in.
func (c *Compiled) FlagString() string {
	var b strings.Builder
	if c.Flags.Global {
		b.WriteByte('g')
	}
	if c.Flags.IgnoreCase {
		b.WriteByte('i')
	}
	if c.Flags.Multiline {
		b.WriteByte('m')
	}
	if c.Flags.DotAll {
		b.WriteByte('s')
	}
	if c.Flags.Unicode {
		b.WriteByte('u')
	}
	if c.Flags.Sticky {
		b.WriteByte('y')
	}
	return b.String()
}

// MatchResult is a single match's captured text and index, the minimal
// shape the RegExp/String intrinsics built on this core would need to
// construct an Array result (that construction is the VM/stdlib layer's
// job, per §1 — this package only runs the match).
type MatchResult struct {
	Index int
	Text  string
	Groups []string
}

// Exec runs the pattern against input starting at startAt (code-point
// offset, for "y"/lastIndex support), returning nil, nil on no match.
func (c *Compiled) Exec(input string, startAt int) (*MatchResult, error) {
	m, err := c.re.FindStringMatchStartingAt(input, startAt)
	if err != nil {
		return nil, coreerrors.NewTypeError("regular expression execution failed: %s", err.Error())
	}
	if m == nil {
		return nil, nil
	}
	groups := m.Groups()
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.String()
	}
	return &MatchResult{Index: m.Index, Text: m.String(), Groups: out}, nil
}

// Test reports whether the pattern matches anywhere in input.
func (c *Compiled) Test(input string) (bool, error) {
	m, err := c.re.FindStringMatch(input)
	if err != nil {
		return false, coreerrors.NewTypeError("regular expression execution failed: %s", err.Error())
	}
	return m != nil, nil
}
