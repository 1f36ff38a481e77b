// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer dereferences nullable scan targets.

Database columns that may be NULL are scanned into pointers; these helpers
turn them back into plain values without nil checks at every call site.
*/
package pointer

// Val returns *p, or the zero value when p is nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
