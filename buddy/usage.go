package buddy

// FreeBytes returns the total number of bytes currently on the heap's
// free lists, by walking every order's list. It is an O(number of free
// blocks) diagnostic query, not a field maintained on every Allocate/Free
// call: spec.md §3's Lifecycle section is explicit that the core does not
// track outstanding allocations for leak detection, so there is no
// "used" counter to keep in sync.
func (h *Heap) FreeBytes() uintptr {
	var total uintptr
	for order := 0; order < h.orders; order++ {
		size := orderSize(h.minOrder, order)
		for off := h.free[order]; off != nullOffset; off = h.readNext(off) {
			total += size
		}
	}
	return total
}

// UsedBytes returns the number of bytes not currently on any free list.
func (h *Heap) UsedBytes() uintptr {
	return uintptr(len(h.region)) - h.FreeBytes()
}

// TotalBytes returns the size of the managed region.
func (h *Heap) TotalBytes() uintptr {
	return uintptr(len(h.region))
}

// Orders returns K, the number of order levels this heap was constructed
// with.
func (h *Heap) Orders() int {
	return h.orders
}
