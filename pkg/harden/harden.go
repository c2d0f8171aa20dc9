// Package harden implements §4.5's transitive, rollback-safe hardening
// protocol: harden(root) walks root's reachability graph, freezing every
// object it visits, and — if any freeze along the way fails — undoes the
// HARDENED flag on everything it had already marked before propagating
// the original error, so a failed harden() leaves no object in a
// partially-hardened state a caller could observe.
package harden

import "ward/pkg/heap"

// Harden implements §4.5. Primitives pass through untouched (there is
// nothing to freeze); a pointer Value is walked breadth-first in
// prototype-first, own-properties-in-insertion-order, value-before-getter-
// before-setter order, matching Object.Children's enqueue order exactly so
// repeated calls visit a given unchanged graph identically.
func Harden(h *heap.Heap, root heap.Value) (heap.Value, error) {
	if !root.IsObject() {
		return root, nil
	}

	visited := make(map[heap.Ref]bool)
	var processed []heap.Ref

	queue := []heap.Ref{root.Ref()}
	visited[root.Ref()] = true

	rollback := func() {
		for _, r := range processed {
			h.SetHardened(r, false)
		}
	}

	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]

		if h.IsHardened(ref) {
			continue
		}
		if err := h.FreezeObject(ref); err != nil {
			rollback()
			return heap.Undefined, err
		}
		h.SetHardened(ref, true)
		processed = append(processed, ref)

		for _, child := range h.ChildrenOf(ref) {
			if child == 0 || visited[child] {
				continue
			}
			visited[child] = true
			queue = append(queue, child)
		}
	}

	return root, nil
}

// IsHardened reports whether v names an object already marked HARDENED.
// A primitive is, vacuously, always considered hardened (§4.5: "harden is
// idempotent"; there is nothing left to do to a primitive).
func IsHardened(h *heap.Heap, v heap.Value) bool {
	if !v.IsObject() {
		return true
	}
	return h.IsHardened(v.Ref())
}
