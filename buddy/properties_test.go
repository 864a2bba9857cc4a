package buddy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// assertNoCoalescableBuddies checks spec.md §8 property 6: after any free
// operation, no two free blocks of the same order are buddies of each
// other (any such pair would have been coalesced already).
func assertNoCoalescableBuddies(t *testing.T, h *Heap) {
	t.Helper()
	top := h.Orders() - 1
	for order := 0; order < top; order++ {
		seen := make(map[uintptr]bool)
		for off := h.free[order]; off != nullOffset; off = h.readNext(off) {
			seen[off] = true
		}
		for off := range seen {
			buddy := h.buddyOffset(off, order)
			require.Falsef(t, seen[buddy], "order %d: offsets %#x and %#x are buddies but both free", order, off, buddy)
		}
	}
}

type liveBlock struct {
	addr uintptr
	size uintptr
}

// TestPropertyCoverageAndCoalescence drives a pseudo-random sequence of
// allocate/free calls and checks, at every observation point, that
// allocated bytes plus free-list bytes exactly cover the region (spec.md
// §8 property 1) and that the free lists never contain a coalescable
// buddy pair (property 6).
func TestPropertyCoverageAndCoalescence(t *testing.T) {
	h := newScenarioHeap(t)
	rng := rand.New(rand.NewSource(12345))

	var live []liveBlock
	sizes := []uintptr{16, 16, 32, 64, 128, 16, 256}

	for i := 0; i < 2000; i++ {
		if len(live) == 0 || rng.Intn(2) == 0 {
			size := sizes[rng.Intn(len(sizes))]
			addr, err := h.Allocate(size, size)
			if err != nil {
				require.ErrorIs(t, err, ErrOutOfMemory)
			} else {
				live = append(live, liveBlock{addr: addr, size: size})
			}
		} else {
			idx := rng.Intn(len(live))
			b := live[idx]
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
			require.NoError(t, h.Free(b.addr, b.size, b.size))
		}

		var allocated uintptr
		for _, b := range live {
			allocated += b.size
		}
		require.Equal(t, h.TotalBytes(), allocated+h.FreeBytes())
		assertNoCoalescableBuddies(t, h)
	}

	for _, b := range live {
		require.NoError(t, h.Free(b.addr, b.size, b.size))
	}
	require.Equal(t, h.TotalBytes(), h.FreeBytes())
}

// TestPropertyRoundTripAlwaysRestoresSingleTopBlock allocates a random
// batch of same-sized blocks and frees them all, and checks the heap
// returns to its post-construction state regardless of free order
// (spec.md §8 property 4).
func TestPropertyRoundTripAlwaysRestoresSingleTopBlock(t *testing.T) {
	rng := rand.New(rand.NewSource(54321))

	for trial := 0; trial < 20; trial++ {
		h := newScenarioHeap(t)

		const n = 64
		var addrs [n]uintptr
		for i := 0; i < n; i++ {
			addr, err := h.Allocate(16, 16)
			require.NoError(t, err)
			addrs[i] = addr
		}

		rng.Shuffle(n, func(i, j int) { addrs[i], addrs[j] = addrs[j], addrs[i] })

		for _, addr := range addrs {
			require.NoError(t, h.Free(addr, 16, 16))
		}

		top := h.Orders() - 1
		require.Equal(t, uintptr(0), h.free[top])
		for order := 0; order < top; order++ {
			require.Equal(t, nullOffset, h.free[order])
		}
	}
}

// TestPropertyAlignmentAlwaysSatisfied allocates with a variety of sizes
// and alignments and checks every returned address respects its
// requested alignment (spec.md §8 property 5).
func TestPropertyAlignmentAlwaysSatisfied(t *testing.T) {
	h := newScenarioHeap(t)
	rng := rand.New(rand.NewSource(999))

	cases := []struct{ size, alignment uintptr }{
		{16, 16}, {16, 32}, {32, 32}, {16, 64}, {64, 64}, {16, 128},
	}

	for i := 0; i < 100; i++ {
		c := cases[rng.Intn(len(cases))]
		addr, err := h.Allocate(c.size, c.alignment)
		if err != nil {
			require.ErrorIs(t, err, ErrOutOfMemory)
			continue
		}
		require.Zerof(t, addr%c.alignment, "case %+v returned unaligned address %#x", c, addr)
	}
}

// TestPropertyInvalidFreeNeverCorruptsState checks spec.md §8 property 2:
// freeing an out-of-range pointer always returns InvalidPointer rather
// than silently corrupting the free lists.
func TestPropertyInvalidFreeNeverCorruptsState(t *testing.T) {
	h := newScenarioHeap(t)
	before := h.FreeBytes()

	badAddresses := []uintptr{
		h.base - 16,
		h.base + h.TotalBytes(),
		h.base + h.TotalBytes() + 0x1000,
		0,
	}
	for _, addr := range badAddresses {
		err := h.Free(addr, 16, 16)
		require.ErrorIs(t, err, ErrInvalidPointer)
	}

	require.Equal(t, before, h.FreeBytes())
}
