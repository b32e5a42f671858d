package buddy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/buddy"
	"github.com/sarchlab/memsim/simerr"
)

var _ = Describe("Allocator", func() {
	var a *buddy.Allocator

	BeforeEach(func() {
		a = buddy.New(1024)
	})

	It("rounds the region up to a power of two", func() {
		b := buddy.New(1000)
		Expect(b.MaxOrder()).To(Equal(10)) // 1024
	})

	It("places two order-7 allocations and re-merges to order 10 on free (S2)", func() {
		id1, err := a.Allocate(100)
		Expect(err).NotTo(HaveOccurred())
		order1, _ := a.OrderOf(id1)
		addr1, _ := a.AddressOf(id1)
		Expect(order1).To(Equal(7))
		Expect(addr1).To(Equal(uint64(0)))

		id2, err := a.Allocate(100)
		Expect(err).NotTo(HaveOccurred())
		order2, _ := a.OrderOf(id2)
		addr2, _ := a.AddressOf(id2)
		Expect(order2).To(Equal(7))
		Expect(addr2).To(Equal(uint64(128)))

		Expect(a.Deallocate(id1)).NotTo(HaveOccurred())
		Expect(a.Deallocate(id2)).NotTo(HaveOccurred())

		Expect(a.FreeListLen(10)).To(Equal(1))
		for k := 0; k < 10; k++ {
			Expect(a.FreeListLen(k)).To(Equal(0))
		}
	})

	It("fails with OutOfMemory when the request exceeds total capacity", func() {
		_, err := a.Allocate(2000)
		Expect(simerr.Is(err, simerr.OutOfMemory)).To(BeTrue())
	})

	It("fails with InvalidId on an unknown id", func() {
		err := a.Deallocate(999)
		Expect(simerr.Is(err, simerr.InvalidID)).To(BeTrue())
	})

	It("never leaves a free block whose buddy is also free at the same order", func() {
		id1, _ := a.Allocate(100)
		_, _ = a.Allocate(100)
		_ = a.Deallocate(id1)

		for k := 0; k < a.MaxOrder(); k++ {
			if a.FreeListLen(k) == 0 {
				continue
			}
			// After this sequence orders 7, 8 and 9 each hold a single
			// free block (at 0, 256 and 512) whose buddy is allocated or
			// split, so every non-empty list must hold exactly one entry.
			Expect(a.FreeListLen(k)).To(Equal(1))
		}
	})

	It("tracks internal fragmentation as block size minus requested size", func() {
		id, err := a.Allocate(100)
		Expect(err).NotTo(HaveOccurred())
		_ = id

		st := a.Stats()
		Expect(st.InternalFrag).To(Equal(uint64(128 - 100)))
	})
})
