package vm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/vm"
)

var _ = Describe("Translator", func() {
	It("evicts FIFO order under memory pressure (S4)", func() {
		t := vm.MakeBuilder().
			WithVABits(16).WithPageSize(64).WithPhysMemSize(256).
			WithPolicy(vm.FIFO).Build()

		Expect(t.NumFrames()).To(Equal(4))

		for _, page := range []uint64{0, 1, 2, 3, 4, 0} {
			_, err := t.Translate(page * 64)
			Expect(err).NotTo(HaveOccurred())
		}

		st := t.Stats()
		Expect(st.PageFaults).To(Equal(uint64(6)))
		Expect(st.DiskAccesses).To(Equal(uint64(6)))
	})

	It("evicts the least-recently-used page, diverging from FIFO (S5)", func() {
		t := vm.MakeBuilder().
			WithVABits(16).WithPageSize(64).WithPhysMemSize(256).
			WithPolicy(vm.LRU).Build()

		for _, page := range []uint64{0, 1, 2, 3, 0, 4} {
			_, err := t.Translate(page * 64)
			Expect(err).NotTo(HaveOccurred())
		}

		st := t.Stats()
		Expect(st.PageFaults).To(Equal(uint64(5)))

		// page1 should have been evicted, not page0: re-accessing page0
		// must now be a hit, and page1 a fault.
		before := t.Stats()
		_, err := t.Translate(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Stats().PageFaults).To(Equal(before.PageFaults))

		_, err = t.Translate(64)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Stats().PageFaults).To(Equal(before.PageFaults + 1))
	})

	It("translates hits without incrementing the fault counter", func() {
		t := vm.MakeBuilder().WithPageSize(64).WithPhysMemSize(256).Build()

		pa1, err := t.Translate(10)
		Expect(err).NotTo(HaveOccurred())
		pa2, err := t.Translate(10)
		Expect(err).NotTo(HaveOccurred())
		Expect(pa1).To(Equal(pa2))
		Expect(t.Stats().PageFaults).To(Equal(uint64(1)))
		Expect(t.Stats().PageHits).To(Equal(uint64(1)))
	})
})
