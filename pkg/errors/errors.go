// Package errors implements the core's error taxonomy (§7): the five kinds
// a host can observe out of Compartment.Evaluate, Object operations, and
// Harden/Lockdown.
package errors

import "fmt"

// CoreError is the interface implemented by every error this package raises.
// Kind() lets a host or test distinguish ECMAScript error classes without
// type-asserting on every concrete struct.
type CoreError interface {
	error
	Pos() Position
	Kind() string
	Message() string
}

// TypeError: mutation of frozen/sealed/non-extensible objects, wrong
// operand kinds, a second call to lockdown() (§4.4, §4.2, §7).
type TypeError struct {
	Position
	Msg string
}

func (e *TypeError) Error() string     { return fmt.Sprintf("TypeError: %s%s", e.Msg, e.Position.suffix()) }
func (e *TypeError) Pos() Position     { return e.Position }
func (e *TypeError) Kind() string      { return "TypeError" }
func (e *TypeError) Message() string   { return e.Msg }

// NewTypeError builds a position-free TypeError, the common case for
// object-model violations raised deep inside get/set/define/delete.
func NewTypeError(format string, args ...interface{}) *TypeError {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

// ReferenceError: an identifier that does not resolve against any
// compartment's globals or lexical bindings (§7).
type ReferenceError struct {
	Position
	Msg string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("ReferenceError: %s%s", e.Msg, e.Position.suffix())
}
func (e *ReferenceError) Pos() Position   { return e.Position }
func (e *ReferenceError) Kind() string    { return "ReferenceError" }
func (e *ReferenceError) Message() string { return e.Msg }

func NewReferenceError(format string, args ...interface{}) *ReferenceError {
	return &ReferenceError{Msg: fmt.Sprintf(format, args...)}
}

// SyntaxError: sourceText handed to evaluate failed to parse (§7). The
// core never parses script itself (§1) — this type exists so a host's
// parser can report through the same taxonomy.
type SyntaxError struct {
	Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("SyntaxError: %s%s", e.Msg, e.Position.suffix())
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "SyntaxError" }
func (e *SyntaxError) Message() string { return e.Msg }

func NewSyntaxError(format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...)}
}

// RangeError: numeric domain failures (§7). Nothing in this core raises one
// itself (an invalid RegExp flag is a SyntaxError); the type exists so a
// host's numeric layer can report through the same taxonomy.
type RangeError struct {
	Position
	Msg string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("RangeError: %s%s", e.Msg, e.Position.suffix())
}
func (e *RangeError) Pos() Position   { return e.Position }
func (e *RangeError) Kind() string    { return "RangeError" }
func (e *RangeError) Message() string { return e.Msg }

func NewRangeError(format string, args ...interface{}) *RangeError {
	return &RangeError{Msg: fmt.Sprintf(format, args...)}
}

// OutOfMemory: the heap could not satisfy an allocation after a
// collection (§4.1). Raised as an Error per §7's table.
type OutOfMemory struct {
	Position
	Msg string
}

func (e *OutOfMemory) Error() string {
	return fmt.Sprintf("Error: out of memory: %s%s", e.Msg, e.Position.suffix())
}
func (e *OutOfMemory) Pos() Position   { return e.Position }
func (e *OutOfMemory) Kind() string    { return "Error" }
func (e *OutOfMemory) Message() string { return e.Msg }

func NewOutOfMemory(format string, args ...interface{}) *OutOfMemory {
	return &OutOfMemory{Msg: fmt.Sprintf(format, args...)}
}

func (p Position) suffix() string {
	if p.Source == nil {
		return ""
	}
	return fmt.Sprintf(" at %d:%d", p.Line, p.Column)
}
