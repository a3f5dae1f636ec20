package memory_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ramgen/memory"
)

var _ = Describe("Storage", func() {
	It("should read and write in a single unit", func() {
		storage := memory.NewStorage(4096)
		Expect(storage.Write(0, 1)).To(Succeed())
		Expect(storage.Write(1, 2)).To(Succeed())

		v, written, err := storage.Read(1)
		Expect(err).ToNot(HaveOccurred())
		Expect(written).To(BeTrue())
		Expect(v).To(Equal(uint64(2)))
	})

	It("should allocate units lazily", func() {
		storage := memory.NewStorage(1 << 29)

		_, written, err := storage.Read(1 << 28)
		Expect(err).ToNot(HaveOccurred())
		Expect(written).To(BeFalse())
		Expect(storage.AllocatedUnits()).To(BeZero())

		Expect(storage.Write(4095, 7)).To(Succeed())
		Expect(storage.Write(4096, 8)).To(Succeed())
		Expect(storage.AllocatedUnits()).To(Equal(2))
	})

	It("should tell a written zero from an untouched word", func() {
		storage := memory.NewStorage(8192)
		Expect(storage.Write(10, 0)).To(Succeed())

		_, written, _ := storage.Read(10)
		Expect(written).To(BeTrue())

		_, written, _ = storage.Read(11)
		Expect(written).To(BeFalse())
	})

	It("should return error if accessing at or over the capacity", func() {
		storage := memory.NewStorage(4096)

		err := storage.Write(4096, 1)
		Expect(errors.Is(err, memory.ErrOutOfRange)).To(BeTrue())

		_, _, err = storage.Read(4096)
		Expect(errors.Is(err, memory.ErrOutOfRange)).To(BeTrue())
	})

	It("should clear all units", func() {
		storage := memory.NewStorage(4096)
		Expect(storage.Write(3, 3)).To(Succeed())

		storage.Clear()

		_, written, _ := storage.Read(3)
		Expect(written).To(BeFalse())
		Expect(storage.Capacity()).To(Equal(uint64(4096)))
	})
})
