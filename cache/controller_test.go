package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/cache"
)

var _ = Describe("Controller", func() {
	It("builds the spec default geometry", func() {
		c := cache.DefaultController()
		Expect(c.Level("L1").Name()).To(Equal("L1"))
		Expect(c.Level("L2").Name()).To(Equal("L2"))
		Expect(c.Level("L3").Name()).To(Equal("L3"))
	})

	It("pays cumulative latency down the hierarchy on an all-miss access", func() {
		c := cache.DefaultController()
		hitLevel := c.AccessMemory(0, false)
		Expect(hitLevel).To(Equal("RAM"))

		st := c.Stats()
		Expect(st.TotalRequests).To(Equal(uint64(1)))
		Expect(st.TotalCycles).To(Equal(uint64(cache.L1Latency + cache.L2Latency + cache.L3Latency + cache.RAMLatency)))
	})

	It("hits L1 on a repeated access and pays only L1 latency", func() {
		c := cache.DefaultController()
		c.AccessMemory(0, false)
		hitLevel := c.AccessMemory(0, false)
		Expect(hitLevel).To(Equal("L1"))

		st := c.Stats()
		Expect(st.TotalRequests).To(Equal(uint64(2)))
		Expect(st.TotalCycles).To(Equal(uint64(cache.L1Latency + cache.L2Latency + cache.L3Latency + cache.RAMLatency + cache.L1Latency)))
	})

	It("discards a level's prior stats on reconfigure", func() {
		c := cache.DefaultController()
		c.AccessMemory(0, false)
		Expect(c.Level("L1").Stats().Misses).To(Equal(uint64(1)))

		err := c.Reconfigure("L1", 2048, 64, 2, cache.PolicyLRU)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Level("L1").Stats().Misses).To(Equal(uint64(0)))
	})

	It("computes AMAT as total cycles over total requests", func() {
		c := cache.DefaultController()
		c.AccessMemory(0, false)
		c.AccessMemory(0, false)

		st := c.Stats()
		Expect(st.AMAT).To(Equal(float64(st.TotalCycles) / float64(st.TotalRequests)))
	})
})
