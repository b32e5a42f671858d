package heap_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/heap"
	"github.com/sarchlab/memsim/simerr"
)

var _ = Describe("List", func() {
	var h *heap.List

	BeforeEach(func() {
		h = heap.MakeBuilder().WithTotalSize(1024).WithStrategy(heap.FirstFit).Build()
	})

	It("covers the whole region with one free block initially", func() {
		blocks := h.Blocks()
		Expect(blocks).To(HaveLen(1))
		Expect(blocks[0].Free).To(BeTrue())
		Expect(blocks[0].Size).To(Equal(uint64(1024)))
	})

	It("splits on allocation and reuses the hole after a free (S1)", func() {
		id1, err := h.Allocate(100)
		Expect(err).NotTo(HaveOccurred())
		Expect(id1).To(Equal(1))

		id2, err := h.Allocate(200)
		Expect(err).NotTo(HaveOccurred())
		Expect(id2).To(Equal(2))

		Expect(h.Deallocate(id1)).NotTo(HaveOccurred())

		id3, err := h.Allocate(50)
		Expect(err).NotTo(HaveOccurred())
		Expect(id3).To(Equal(3))

		blocks := h.Blocks()
		Expect(blocks).To(HaveLen(4))
		Expect(blocks[0]).To(Equal(heap.Block{ID: 3, Start: 0, Size: 50, Free: false}))
		Expect(blocks[1]).To(Equal(heap.Block{ID: 0, Start: 50, Size: 50, Free: true}))
		Expect(blocks[2]).To(Equal(heap.Block{ID: 2, Start: 100, Size: 200, Free: false}))
		Expect(blocks[3]).To(Equal(heap.Block{ID: 0, Start: 300, Size: 724, Free: true}))
	})

	It("prefers the largest free block under worst-fit (S3)", func() {
		h.SetStrategy(heap.WorstFit)

		_, err := h.Allocate(100)
		Expect(err).NotTo(HaveOccurred())
		id2, err := h.Allocate(100)
		Expect(err).NotTo(HaveOccurred())
		_, err = h.Allocate(100)
		Expect(err).NotTo(HaveOccurred())

		Expect(h.Deallocate(id2)).NotTo(HaveOccurred())

		id4, err := h.Allocate(50)
		Expect(err).NotTo(HaveOccurred())

		blocks := h.Blocks()
		var got heap.Block
		for _, b := range blocks {
			if b.ID == id4 {
				got = b
			}
		}
		Expect(got.Start).To(Equal(uint64(300)))
	})

	It("fails with OutOfMemory when nothing fits", func() {
		_, err := h.Allocate(2000)
		Expect(simerr.Is(err, simerr.OutOfMemory)).To(BeTrue())

		st := h.Stats()
		Expect(st.Failures).To(Equal(uint64(1)))
	})

	It("fails with InvalidId on a second free of the same id", func() {
		id, err := h.Allocate(10)
		Expect(err).NotTo(HaveOccurred())

		before := h.Blocks()
		Expect(h.Deallocate(id)).NotTo(HaveOccurred())
		after := h.Blocks()

		err = h.Deallocate(id)
		Expect(simerr.Is(err, simerr.InvalidID)).To(BeTrue())
		Expect(h.Blocks()).To(Equal(after))
		Expect(before).NotTo(Equal(after))
	})

	It("never leaves two adjacent free blocks after a free", func() {
		id1, _ := h.Allocate(100)
		id2, _ := h.Allocate(100)
		_, _ = h.Allocate(100)

		Expect(h.Deallocate(id1)).NotTo(HaveOccurred())
		Expect(h.Deallocate(id2)).NotTo(HaveOccurred())

		blocks := h.Blocks()
		for i := 0; i+1 < len(blocks); i++ {
			Expect(blocks[i].Free && blocks[i+1].Free).To(BeFalse())
		}
	})

	It("keeps the block list a contiguous, gap-free cover of the region", func() {
		_, _ = h.Allocate(64)
		_, _ = h.Allocate(128)

		blocks := h.Blocks()
		var sum uint64
		var cursor uint64
		for _, b := range blocks {
			Expect(b.Start).To(Equal(cursor))
			sum += b.Size
			cursor += b.Size
		}
		Expect(sum).To(Equal(uint64(1024)))
	})
})
