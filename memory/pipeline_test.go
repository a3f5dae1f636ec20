package memory_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ramgen/memory"
)

var _ = Describe("PipelineModel", func() {
	var (
		storage *memory.Storage
		pipe    *memory.PipelineModel
	)

	BeforeEach(func() {
		storage = memory.NewStorage(1024)
		pipe = memory.NewPipelineModel(storage, 3)
	})

	It("should complete an operation after the pipeline depth", func() {
		out := pipe.Tick(memory.Op{Write: true, Address: 5, Data: 42})
		Expect(out.Valid).To(BeFalse())

		for i := 1; i < 3; i++ {
			out = pipe.Tick(memory.Op{})
			Expect(out.Valid).To(BeFalse())
			Expect(pipe.InFlight()).To(Equal(1))
		}

		_, written, _ := storage.Read(5)
		Expect(written).To(BeFalse())

		out = pipe.Tick(memory.Op{})
		Expect(out.Valid).To(BeTrue())
		Expect(out.Op.Address).To(Equal(uint64(5)))

		v, written, _ := storage.Read(5)
		Expect(written).To(BeTrue())
		Expect(v).To(Equal(uint64(42)))
	})

	It("should complete back-to-back operations one per cycle", func() {
		for i := 0; i < 3; i++ {
			pipe.Tick(memory.Op{Write: true, Address: uint64(i), Data: uint64(i * 10)})
		}

		pipe.Tick(memory.Op{Read: true, Address: 1})
		Expect(pipe.Tick(memory.Op{}).Valid).To(BeTrue())
		Expect(pipe.Tick(memory.Op{}).Valid).To(BeTrue())

		out := pipe.Tick(memory.Op{})
		Expect(out.Valid).To(BeTrue())
		Expect(out.Op.Read).To(BeTrue())
		Expect(out.Data).To(Equal(uint64(10)))
	})

	It("should drop operations beyond the capacity", func() {
		pipe.Tick(memory.Op{Write: true, Address: 4096, Data: 1})
		pipe.Tick(memory.Op{})
		pipe.Tick(memory.Op{})

		out := pipe.Tick(memory.Op{})

		Expect(out.Valid).To(BeTrue())
		Expect(out.Dropped).To(BeTrue())
		Expect(storage.AllocatedUnits()).To(BeZero())
	})

	It("should clear in-flight operations", func() {
		pipe.Tick(memory.Op{Write: true, Address: 1, Data: 1})

		pipe.Clear()

		Expect(pipe.InFlight()).To(BeZero())
		Expect(pipe.Latency()).To(Equal(3))
	})
})

var _ = Describe("DualPortModel", func() {
	var (
		storage *memory.Storage
		model   *memory.DualPortModel
	)

	BeforeEach(func() {
		storage = memory.NewStorage(1024)
		model = memory.NewDualPortModel(storage)
		Expect(storage.Write(8, 0xAA)).To(Succeed())
	})

	It("should suppress both same-address writes and flag the collision", func() {
		res := model.Cycle(
			memory.PortOp{Enable: true, Write: true, Address: 8, Data: 1},
			memory.PortOp{Enable: true, Write: true, Address: 8, Data: 2},
		)

		Expect(res.Collision).To(BeTrue())
		Expect(res.WriteCollision).To(BeTrue())
		Expect(res.CollisionAddress).To(Equal(uint64(8)))

		v, _, _ := storage.Read(8)
		Expect(v).To(Equal(uint64(0xAA)))
	})

	It("should let a read see the old value on a read-write collision", func() {
		res := model.Cycle(
			memory.PortOp{Enable: true, Write: true, Address: 8, Data: 1},
			memory.PortOp{Enable: true, Address: 8},
		)

		Expect(res.Collision).To(BeTrue())
		Expect(res.WriteCollision).To(BeFalse())
		Expect(res.B.Valid).To(BeTrue())
		Expect(res.B.Data).To(Equal(uint64(0xAA)))

		v, _, _ := storage.Read(8)
		Expect(v).To(Equal(uint64(1)))
	})

	It("should apply writes to different addresses", func() {
		res := model.Cycle(
			memory.PortOp{Enable: true, Write: true, Address: 1, Data: 11},
			memory.PortOp{Enable: true, Write: true, Address: 2, Data: 22},
		)

		Expect(res.Collision).To(BeFalse())

		a, _, _ := storage.Read(1)
		b, _, _ := storage.Read(2)
		Expect(a).To(Equal(uint64(11)))
		Expect(b).To(Equal(uint64(22)))
	})

	It("should ignore idle and out-of-range ports", func() {
		res := model.Cycle(
			memory.PortOp{Write: true, Address: 8, Data: 1},
			memory.PortOp{Enable: true, Write: true, Address: 2048, Data: 2},
		)

		Expect(res.Collision).To(BeFalse())
		Expect(res.A.Valid).To(BeFalse())

		v, _, _ := storage.Read(8)
		Expect(v).To(Equal(uint64(0xAA)))
	})
})
