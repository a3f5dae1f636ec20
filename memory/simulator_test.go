package memory_test

import (
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/memory"
	"github.com/sarchlab/ramgen/params"
)

var _ = Describe("Simulator", func() {
	var sim *memory.Simulator

	BeforeEach(func() {
		sim = memory.NewSimulator(params.Derive(config.Default()))
	})

	It("should log a written value on read back", func() {
		Expect(sim.Write(0x1000, 0xDEADBEEF)).To(Succeed())

		w, err := sim.Read(0x1000)

		Expect(err).ToNot(HaveOccurred())
		Expect(w.Value).To(Equal(uint64(0xDEADBEEF)))
		Expect(w.Initialized).To(BeTrue())
		Expect(sim.Logs()).To(Equal([]string{
			"WRITE: Address 0x1000 <- 0xDEADBEEF",
			"READ: Address 0x1000 -> 0xDEADBEEF",
		}))
	})

	It("should report never-written words as uninitialized", func() {
		w, err := sim.Read(0x2000)

		Expect(err).ToNot(HaveOccurred())
		Expect(w.Initialized).To(BeFalse())
		Expect(sim.Logs()).To(ConsistOf("READ: Address 0x2000 -> UNINITIALIZED"))
		Expect(memory.Passed(sim.Logs())).To(BeTrue())
	})

	It("should round trip random addresses", func() {
		r := rand.New(rand.NewSource(3))

		for i := 0; i < 1000; i++ {
			addr := r.Int63n(int64(sim.Depth()))
			v := r.Uint64()

			Expect(sim.Write(addr, v)).To(Succeed())
			w, err := sim.Read(addr)
			Expect(err).ToNot(HaveOccurred())
			Expect(w.Value).To(Equal(v))
		}
	})

	DescribeTable("boundary violations",
		func(addr int64) {
			Expect(sim.Write(0, 1)).To(Succeed())
			depth := int64(sim.Depth())
			Expect(sim.Write(depth-1, 2)).To(Succeed())

			err := sim.Write(addr, 99)

			var be *memory.BoundaryError
			Expect(errors.As(err, &be)).To(BeTrue())
			Expect(errors.Is(err, memory.ErrOutOfRange)).To(BeTrue())
			Expect(be.Op).To(Equal("Write"))

			_, err = sim.Read(addr)
			Expect(errors.Is(err, memory.ErrOutOfRange)).To(BeTrue())

			w, _ := sim.Read(0)
			Expect(w.Value).To(Equal(uint64(1)))
			w, _ = sim.Read(depth - 1)
			Expect(w.Value).To(Equal(uint64(2)))

			Expect(memory.Passed(sim.Logs())).To(BeFalse())
		},
		Entry("depth", int64(1)<<27),
		Entry("minus one", int64(-1)),
		Entry("far beyond", int64(1)<<40),
	)

	It("should log out-of-range accesses with the error token", func() {
		_ = sim.Write(-1, 5)

		Expect(sim.Logs()).To(ConsistOf(
			"ERROR: Write address -0x1 out of range [0x0, 0x7FFFFFF]"))
	})

	It("should mask values to the data width", func() {
		narrow := memory.MakeBuilder().
			WithDataWidth(16).
			WithDepth(64).
			Build("Narrow")

		Expect(narrow.Write(3, 0x12345)).To(Succeed())
		w, _ := narrow.Read(3)
		Expect(w.Value).To(Equal(uint64(0x2345)))
	})

	It("should pass the basic test", func() {
		logs := sim.RunBasicTest()

		Expect(memory.Passed(logs)).To(BeTrue())
		Expect(logs).To(ContainElement("✓ All basic tests passed"))
		Expect(logs).To(ContainElement(
			"✓ Boundary check passed: address 0x8000000 rejected"))
		Expect(logs).To(ContainElement("READ: Address 0x7FFFFFF -> 0xFFFFFFFFFFFFFFFF"))
	})

	It("should write past the end in the basic test without leaving an error", func() {
		logs := sim.RunBasicTest()

		Expect(logs).ToNot(ContainElement(ContainSubstring("ERROR")))
		Expect(logs).ToNot(ContainElement(ContainSubstring("0x8000000 <-")))
		Expect(logs[len(logs)-2]).To(Equal(
			"✓ Boundary check passed: address 0x8000000 rejected"))

		w, err := sim.Read(0x7FFFFFF)
		Expect(err).ToNot(HaveOccurred())
		Expect(w.Value).To(Equal(^uint64(0)))
	})

	It("should keep earlier entries in the basic test log", func() {
		_ = sim.Write(0x2000, 1)

		logs := sim.RunBasicTest()

		Expect(logs[0]).To(Equal("WRITE: Address 0x2000 <- 0x1"))
	})

	It("should fail the basic test log after an earlier error", func() {
		_ = sim.Write(-5, 1)

		Expect(memory.Passed(sim.RunBasicTest())).To(BeFalse())
	})

	It("should run the basic test on tiny memories", func() {
		tiny := memory.MakeBuilder().WithDepth(4).Build("Tiny")

		logs := tiny.RunBasicTest()

		Expect(memory.Passed(logs)).To(BeTrue())
		Expect(memory.BasicVectors(4, 64)).To(HaveLen(3))
	})

	It("should reset storage and log but keep the geometry", func() {
		Expect(sim.Write(7, 7)).To(Succeed())

		sim.Reset()

		Expect(sim.Logs()).To(BeEmpty())
		w, _ := sim.Read(7)
		Expect(w.Initialized).To(BeFalse())
		Expect(sim.Depth()).To(Equal(uint64(1) << 27))
		Expect(sim.DataWidth()).To(Equal(64))
	})

	It("should hand out copies of the log", func() {
		_ = sim.Write(1, 1)

		logs := sim.Logs()
		logs[0] = "changed"

		Expect(sim.Logs()[0]).To(Equal("WRITE: Address 0x1 <- 0x1"))
	})

	It("should give every instance its own id", func() {
		other := memory.NewSimulator(params.Derive(config.Default()))

		Expect(other.ID()).ToNot(Equal(sim.ID()))
	})
})

var _ = Describe("Simulator with ECC", func() {
	var sim *memory.Simulator

	BeforeEach(func() {
		sim = memory.MakeBuilder().
			WithConfig(config.Preset(config.Medium)).
			Build("ECC")
	})

	It("should enable ECC from the configuration", func() {
		Expect(sim.ECC()).To(BeTrue())
		Expect(sim.Depth()).To(Equal(uint64(268435456)))
	})

	It("should correct a single flipped bit and write it back", func() {
		Expect(sim.Write(0x40, 0xDEADBEEF)).To(Succeed())
		Expect(sim.InjectBitFlip(0x40, 5)).To(Succeed())

		w, err := sim.Read(0x40)

		Expect(err).ToNot(HaveOccurred())
		Expect(w.Value).To(Equal(uint64(0xDEADBEEF)))
		Expect(w.Corrected).To(BeTrue())
		Expect(sim.Logs()).To(ContainElement(
			"ECC: Single-bit error corrected at address 0x40 (bit 5)"))

		w, err = sim.Read(0x40)
		Expect(err).ToNot(HaveOccurred())
		Expect(w.Corrected).To(BeFalse())
	})

	It("should correct a flipped check bit", func() {
		Expect(sim.Write(1, 99)).To(Succeed())
		Expect(sim.InjectBitFlip(1, 64+2)).To(Succeed())

		w, err := sim.Read(1)

		Expect(err).ToNot(HaveOccurred())
		Expect(w.Value).To(Equal(uint64(99)))
		Expect(w.Corrected).To(BeTrue())
	})

	It("should report two flipped bits as uncorrectable", func() {
		Expect(sim.Write(0x40, 0xDEADBEEF)).To(Succeed())
		Expect(sim.InjectBitFlip(0x40, 0)).To(Succeed())
		Expect(sim.InjectBitFlip(0x40, 9)).To(Succeed())

		w, err := sim.Read(0x40)

		Expect(errors.Is(err, memory.ErrUncorrectable)).To(BeTrue())
		Expect(w.Value).To(Equal(uint64(0xDEADBEEF ^ 1 ^ 1<<9)))
		Expect(memory.Passed(sim.Logs())).To(BeFalse())
	})

	It("should refuse to flip unwritten words or bad bits", func() {
		Expect(sim.InjectBitFlip(3, 0)).ToNot(Succeed())

		Expect(sim.Write(3, 1)).To(Succeed())
		Expect(sim.InjectBitFlip(3, 72)).ToNot(Succeed())
		Expect(sim.InjectBitFlip(3, 71)).To(Succeed())
	})

	It("should log rejected flips in order", func() {
		Expect(sim.InjectBitFlip(3, 0)).ToNot(Succeed())
		Expect(sim.Write(3, 1)).To(Succeed())
		Expect(sim.InjectBitFlip(3, 72)).ToNot(Succeed())

		Expect(sim.Logs()).To(Equal([]string{
			"ERROR: Fault address 0x3 is uninitialized",
			"WRITE: Address 0x3 <- 0x1",
			"ERROR: Fault bit 72 out of range [0, 72)",
		}))
	})

	It("should pass the basic test", func() {
		Expect(memory.Passed(sim.RunBasicTest())).To(BeTrue())
	})
})
