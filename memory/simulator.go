// Package memory provides the behavioural memory model used to sanity-check
// read and write sequences against a configuration.
package memory

import (
	"fmt"

	"github.com/sarchlab/ramgen/ecc"
)

// Word is the result of a successful read.
type Word struct {
	Value       uint64
	Initialized bool

	// Corrected is set when ECC repaired a single flipped bit.
	Corrected bool
}

// Simulator is an address to value store with an append-only log.
type Simulator struct {
	name      string
	id        string
	dataWidth int
	depth     uint64
	storage   *Storage

	codec  *ecc.Codec
	checks *Storage

	logs []string
}

// Name returns the name given at build time.
func (s *Simulator) Name() string { return s.name }

// ID returns an identifier unique to this instance.
func (s *Simulator) ID() string { return s.id }

// Depth returns the number of words.
func (s *Simulator) Depth() uint64 { return s.depth }

// DataWidth returns the word width in bits.
func (s *Simulator) DataWidth() int { return s.dataWidth }

// ECC reports whether words are protected by a check word.
func (s *Simulator) ECC() bool { return s.codec != nil }

func (s *Simulator) mask() uint64 {
	if s.dataWidth == 64 {
		return ^uint64(0)
	}

	return 1<<s.dataWidth - 1
}

func (s *Simulator) log(format string, args ...any) {
	s.logs = append(s.logs, fmt.Sprintf(format, args...))
}

func (s *Simulator) inRange(addr int64) bool {
	return addr >= 0 && uint64(addr) < s.depth
}

func (s *Simulator) boundaryError(op string, addr int64) error {
	err := &BoundaryError{Op: op, Address: addr, Depth: s.depth}
	s.log("ERROR: %s", err.Error())

	return err
}

// Write stores value, masked to the data width, at addr. An address outside
// [0, depth) is logged and returned as a *BoundaryError without touching
// storage.
func (s *Simulator) Write(addr int64, value uint64) error {
	if !s.inRange(addr) {
		return s.boundaryError("Write", addr)
	}

	value &= s.mask()
	s.store(uint64(addr), value)
	s.log("WRITE: Address %s <- 0x%X", formatAddress(addr), value)

	return nil
}

func (s *Simulator) store(addr, value uint64) {
	mustSucceed(s.storage.Write(addr, value))

	if s.codec != nil {
		mustSucceed(s.checks.Write(addr, s.codec.Encode(value)))
	}
}

// Read returns the word at addr. A never-written word is logged as
// uninitialized and is not an error.
func (s *Simulator) Read(addr int64) (Word, error) {
	if !s.inRange(addr) {
		return Word{}, s.boundaryError("Read", addr)
	}

	value, written, err := s.storage.Read(uint64(addr))
	mustSucceed(err)

	if !written {
		s.log("READ: Address %s -> UNINITIALIZED", formatAddress(addr))
		return Word{}, nil
	}

	w := Word{Value: value, Initialized: true}

	if s.codec != nil {
		w, err = s.decode(addr, value)
		if err != nil {
			return w, err
		}
	}

	s.log("READ: Address %s -> 0x%X", formatAddress(addr), w.Value)

	return w, nil
}

func (s *Simulator) decode(addr int64, value uint64) (Word, error) {
	check, _, err := s.checks.Read(uint64(addr))
	mustSucceed(err)

	res := s.codec.Decode(value, check)

	switch res.Status {
	case ecc.Uncorrectable:
		s.log("ERROR: ECC double-bit error at address %s (syndrome 0x%X)",
			formatAddress(addr), res.Syndrome)

		return Word{Value: value, Initialized: true},
			fmt.Errorf("%w at address %s", ErrUncorrectable, formatAddress(addr))
	case ecc.Corrected:
		mustSucceed(s.storage.Write(uint64(addr), res.Data))
		mustSucceed(s.checks.Write(uint64(addr), res.Check))

		if res.Bit >= 0 {
			s.log("ECC: Single-bit error corrected at address %s (bit %d)",
				formatAddress(addr), res.Bit)
		} else {
			s.log("ECC: Check bit error corrected at address %s",
				formatAddress(addr))
		}

		return Word{Value: res.Data, Initialized: true, Corrected: true}, nil
	default:
		return Word{Value: res.Data, Initialized: true}, nil
	}
}

// InjectBitFlip flips one stored bit of a written word without updating its
// check word. Bits at and above the data width address the check word of an
// ECC-protected simulator. A rejected flip is logged like a rejected access.
func (s *Simulator) InjectBitFlip(addr int64, bit int) error {
	if !s.inRange(addr) {
		return s.boundaryError("Fault", addr)
	}

	limit := s.dataWidth
	if s.codec != nil {
		limit += s.codec.StoredBits()
	}

	if bit < 0 || bit >= limit {
		return s.faultError(fmt.Errorf("bit %d out of range [0, %d)", bit, limit))
	}

	value, written, err := s.storage.Read(uint64(addr))
	mustSucceed(err)

	if !written {
		return s.faultError(
			fmt.Errorf("address %s is uninitialized", formatAddress(addr)))
	}

	if bit < s.dataWidth {
		mustSucceed(s.storage.Write(uint64(addr), value^1<<bit))
	} else {
		check, _, err := s.checks.Read(uint64(addr))
		mustSucceed(err)
		mustSucceed(s.checks.Write(uint64(addr), check^1<<(bit-s.dataWidth)))
	}

	s.log("FAULT: Flipped bit %d at address %s", bit, formatAddress(addr))

	return nil
}

func (s *Simulator) faultError(err error) error {
	s.log("ERROR: Fault %s", err.Error())
	return err
}

// Reset clears storage and log. Depth and width are unchanged.
func (s *Simulator) Reset() {
	s.storage.Clear()

	if s.checks != nil {
		s.checks.Clear()
	}

	s.logs = nil
}

// Logs returns a copy of the log in order.
func (s *Simulator) Logs() []string {
	return append([]string(nil), s.logs...)
}

func mustSucceed(err error) {
	if err != nil {
		panic(err)
	}
}
