// Package ecc implements the single-error-correcting, double-error-detecting
// Hamming code used by ECC-protected memories.
//
// Check bit i covers every codeword position whose index has bit i set.
// Check bits sit at the power-of-two positions and data bits fill the rest
// in order. An overall parity bit, stored above the check bits, separates
// single from double errors.
package ecc

import (
	"fmt"
	"math/bits"
)

// CheckBits returns ceil(log2(dataWidth+1)), the redundancy width of a data
// word.
func CheckBits(dataWidth int) int {
	return bits.Len(uint(dataWidth))
}

// Status classifies a decoded word.
type Status int

// Decode outcomes.
const (
	NoError Status = iota
	Corrected
	Uncorrectable
)

func (s Status) String() string {
	switch s {
	case NoError:
		return "no error"
	case Corrected:
		return "corrected"
	case Uncorrectable:
		return "uncorrectable"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of decoding one stored word.
type Result struct {
	Data     uint64
	Check    uint64
	Syndrome int
	Status   Status

	// Bit is the corrected data bit, or -1 when no data bit changed.
	Bit int
}

// A Codec encodes and decodes words of a fixed data width.
type Codec struct {
	dataWidth int
	checkBits int
	positions []int
	masks     []uint64
	syndromes map[int]int
}

// NewCodec creates a codec for dataWidth-bit words. The redundancy width is
// CheckBits(dataWidth), which must satisfy the Hamming bound.
func NewCodec(dataWidth int) *Codec {
	if dataWidth < 1 || dataWidth > 64 {
		panic(fmt.Sprintf("ecc: data width %d out of range", dataWidth))
	}

	r := CheckBits(dataWidth)
	if 1<<r < dataWidth+r+1 {
		panic(fmt.Sprintf("ecc: %d check bits cannot cover %d data bits",
			r, dataWidth))
	}

	c := &Codec{
		dataWidth: dataWidth,
		checkBits: r,
		positions: make([]int, 0, dataWidth),
		masks:     make([]uint64, r),
		syndromes: make(map[int]int, dataWidth),
	}

	for pos := 1; len(c.positions) < dataWidth; pos++ {
		if pos&(pos-1) == 0 {
			continue
		}

		k := len(c.positions)
		c.positions = append(c.positions, pos)
		c.syndromes[pos] = k

		for i := 0; i < r; i++ {
			if pos&(1<<i) != 0 {
				c.masks[i] |= 1 << k
			}
		}
	}

	return c
}

// DataWidth returns the protected word width.
func (c *Codec) DataWidth() int { return c.dataWidth }

// CheckBits returns the number of Hamming check bits.
func (c *Codec) CheckBits() int { return c.checkBits }

// StoredBits returns the width of a stored check word, parity included.
func (c *Codec) StoredBits() int { return c.checkBits + 1 }

// Masks returns, per check bit, the data bits it covers.
func (c *Codec) Masks() []uint64 {
	return append([]uint64(nil), c.masks...)
}

// Positions returns the codeword position of every data bit. The syndrome
// of a single flipped data bit equals its position.
func (c *Codec) Positions() []int {
	return append([]int(nil), c.positions...)
}

func (c *Codec) hamming(data uint64) uint64 {
	var check uint64

	for i, m := range c.masks {
		check |= uint64(bits.OnesCount64(data&m)&1) << i
	}

	return check
}

// Encode returns the stored check word: Hamming check bits in the low bits
// and the overall parity bit above them.
func (c *Codec) Encode(data uint64) uint64 {
	data &= c.dataMask()
	check := c.hamming(data)
	parity := uint64((bits.OnesCount64(data) + bits.OnesCount64(check)) & 1)

	return check | parity<<c.checkBits
}

// Decode checks a stored word. Single flips anywhere in the codeword are
// corrected. Double flips are reported without touching the data.
func (c *Codec) Decode(data, check uint64) Result {
	data &= c.dataMask()
	check &= 1<<(c.checkBits+1) - 1

	hammingMask := uint64(1)<<c.checkBits - 1
	syndrome := int((check & hammingMask) ^ c.hamming(data))
	odd := (bits.OnesCount64(data)+bits.OnesCount64(check))&1 == 1

	res := Result{Data: data, Check: check, Syndrome: syndrome, Bit: -1}

	switch {
	case syndrome == 0 && !odd:
		res.Status = NoError
	case !odd:
		res.Status = Uncorrectable
	case syndrome == 0 || syndrome&(syndrome-1) == 0:
		res.Status = Corrected
		res.Check = c.Encode(data)
	default:
		k, ok := c.syndromes[syndrome]
		if !ok {
			res.Status = Uncorrectable
			return res
		}

		res.Status = Corrected
		res.Bit = k
		res.Data = data ^ 1<<k
		res.Check = c.Encode(res.Data)
	}

	return res
}

func (c *Codec) dataMask() uint64 {
	if c.dataWidth == 64 {
		return ^uint64(0)
	}

	return 1<<c.dataWidth - 1
}
