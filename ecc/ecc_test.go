package ecc_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ramgen/ecc"
)

var _ = Describe("Codec", func() {
	var codec *ecc.Codec

	BeforeEach(func() {
		codec = ecc.NewCodec(64)
	})

	It("should use seven check bits for 64-bit words", func() {
		Expect(ecc.CheckBits(64)).To(Equal(7))
		Expect(codec.CheckBits()).To(Equal(7))
		Expect(codec.StoredBits()).To(Equal(8))
	})

	It("should place data bits off the power-of-two positions", func() {
		pos := codec.Positions()

		Expect(pos).To(HaveLen(64))
		Expect(pos[0]).To(Equal(3))
		Expect(pos[1]).To(Equal(5))
		Expect(pos[63]).To(Equal(71))

		for _, p := range pos {
			Expect(p & (p - 1)).ToNot(BeZero())
		}
	})

	It("should cover every data bit by at least two check bits", func() {
		masks := codec.Masks()
		for k := 0; k < 64; k++ {
			n := 0
			for _, m := range masks {
				if m&(1<<k) != 0 {
					n++
				}
			}
			Expect(n).To(BeNumerically(">=", 2))
		}
	})

	It("should decode clean words", func() {
		data := uint64(0xDEADBEEFCAFEF00D)

		res := codec.Decode(data, codec.Encode(data))

		Expect(res.Status).To(Equal(ecc.NoError))
		Expect(res.Data).To(Equal(data))
		Expect(res.Syndrome).To(BeZero())
	})

	It("should correct every single data bit flip", func() {
		r := rand.New(rand.NewSource(1))

		for k := 0; k < 64; k++ {
			data := r.Uint64()
			check := codec.Encode(data)

			res := codec.Decode(data^1<<k, check)

			Expect(res.Status).To(Equal(ecc.Corrected))
			Expect(res.Bit).To(Equal(k))
			Expect(res.Data).To(Equal(data))
			Expect(res.Syndrome).To(Equal(codec.Positions()[k]))
		}
	})

	It("should correct a flipped check bit without touching data", func() {
		data := uint64(0x1234)
		check := codec.Encode(data)

		for i := 0; i < codec.StoredBits(); i++ {
			res := codec.Decode(data, check^1<<i)

			Expect(res.Status).To(Equal(ecc.Corrected))
			Expect(res.Bit).To(Equal(-1))
			Expect(res.Data).To(Equal(data))
			Expect(res.Check).To(Equal(check))
		}
	})

	It("should report double flips as uncorrectable", func() {
		r := rand.New(rand.NewSource(2))

		for n := 0; n < 200; n++ {
			data := r.Uint64()
			check := codec.Encode(data)
			a := r.Intn(64)
			b := (a + 1 + r.Intn(63)) % 64

			res := codec.Decode(data^1<<a^1<<b, check)

			Expect(res.Status).To(Equal(ecc.Uncorrectable))
			Expect(res.Data).To(Equal(data ^ 1<<a ^ 1<<b))
		}
	})

	It("should report a data flip plus a check flip as uncorrectable", func() {
		data := uint64(42)
		check := codec.Encode(data)

		res := codec.Decode(data^1<<10, check^1)

		Expect(res.Status).To(Equal(ecc.Uncorrectable))
	})

	It("should work for narrow words", func() {
		c := ecc.NewCodec(8)
		Expect(c.CheckBits()).To(Equal(4))

		res := c.Decode(0xA5^0x10, c.Encode(0xA5))
		Expect(res.Status).To(Equal(ecc.Corrected))
		Expect(res.Data).To(Equal(uint64(0xA5)))
	})

	It("should refuse widths the code cannot cover", func() {
		Expect(func() { ecc.NewCodec(1) }).To(Panic())
		Expect(func() { ecc.NewCodec(65) }).To(Panic())
	})
})
