// Package engine is the host embedding surface of §6.1: create a
// context over a fixed-capacity heap, build its one Realm, and hand out
// Compartments against it. Everything else in this module is reachable
// only through a Context.
package engine

import (
	"ward/pkg/compartment"
	coreerrors "ward/pkg/errors"
	"ward/pkg/heap"
	"ward/pkg/realm"
)

// Config mirrors §6.1's create(buffer, length, stdlib) parameters in Go
// terms: HeapCapacity stands in for the caller-provided memory buffer's
// size (see pkg/heap's Heap type for why object slots, not bytes), and
// DebugRelocateEveryAlloc is the §4.1 SHOULD debug mode that runs a
// collection on every allocation so an unrooted Ref goes visibly wrong
// immediately instead of only once the heap happens to fill up.
type Config struct {
	HeapCapacity            int
	DebugRelocateEveryAlloc bool
}

// DefaultConfig returns a Config with a heap capacity comfortably large
// enough for a realm's intrinsics plus ordinary script use, and debug
// relocation off.
func DefaultConfig() Config {
	return Config{HeapCapacity: 1 << 16}
}

// Context is one engine instance: one heap, one Realm, any number of
// Compartments created against it (§6.1). A Context's intrinsics are
// fixed at creation; there is no API to add a second Realm to an
// existing Context, matching §4.3's "one Realm per context" framing.
type Context struct {
	Heap  *heap.Heap
	Realm *realm.Realm

	destroyed bool
}

// NewContext implements §6.1's create(): allocates the heap, builds the
// realm's intrinsics over it, and returns a ready-to-use Context.
func NewContext(cfg Config) (*Context, error) {
	capacity := cfg.HeapCapacity
	if capacity <= 0 {
		capacity = DefaultConfig().HeapCapacity
	}
	h := heap.New(capacity)
	h.SetDebugRelocateEveryAlloc(cfg.DebugRelocateEveryAlloc)

	r, err := realm.New(h)
	if err != nil {
		return nil, err
	}
	return &Context{Heap: h, Realm: r}, nil
}

// NewCompartment creates a Compartment against the context's Realm
// (§4.3); its globalThis starts seeded with the realm's current
// shared-intrinsic template, which reflects whatever hardening/lockdown
// state the realm is in at the moment of creation.
func (ctx *Context) NewCompartment(opts compartment.Options) (*compartment.Compartment, error) {
	if ctx.destroyed {
		return nil, coreerrors.NewTypeError("context has been destroyed")
	}
	return compartment.New(ctx.Heap, ctx.Realm, opts)
}

// Lockdown runs §4.4's lockdown() against the context's single realm.
func (ctx *Context) Lockdown() error {
	if ctx.destroyed {
		return coreerrors.NewTypeError("context has been destroyed")
	}
	return ctx.Realm.Lockdown()
}

// Stats returns the heap's GC counters (§6.1's optional diagnostics).
func (ctx *Context) Stats() heap.Stats { return ctx.Heap.Stats() }

// Destroy implements §6.1's destroy(context): releases the Context's
// reference to its heap and realm so the whole object graph becomes
// collectible by the host's own (Go) garbage collector, and marks the
// Context unusable. There is no separate buffer to free — Go's runtime
// owns that — but destroy still exists as an explicit lifecycle op
// because a caller holding a *Context after this point is a bug the
// zero-value fields and the destroyed flag are meant to surface loudly.
func (ctx *Context) Destroy() {
	ctx.Heap = nil
	ctx.Realm = nil
	ctx.destroyed = true
}
