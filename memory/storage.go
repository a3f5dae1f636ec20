package memory

import (
	"fmt"
)

// A Storage keeps the words of a simulated memory.
//
// The storage is managed in units, similar to pages. Units that have never
// been written are not allocated, so a storage can describe billions of
// words while only holding the ones in use. Each unit also tracks which of
// its words have been written.
type Storage struct {
	unitSize uint64
	capacity uint64
	units    map[uint64]*storageUnit
}

type storageUnit struct {
	words   []uint64
	written []uint64
}

const defaultUnitSize = 4096

// NewStorage creates a storage of capacity words.
func NewStorage(capacity uint64) *Storage {
	return &Storage{
		unitSize: defaultUnitSize,
		capacity: capacity,
		units:    make(map[uint64]*storageUnit),
	}
}

// Capacity returns the number of words the storage holds.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

// AllocatedUnits returns the number of units backed by memory.
func (s *Storage) AllocatedUnits() int {
	return len(s.units)
}

func (s *Storage) checkAddress(address uint64) error {
	if address >= s.capacity {
		return fmt.Errorf("%w: word 0x%X beyond capacity 0x%X",
			ErrOutOfRange, address, s.capacity)
	}

	return nil
}

func (s *Storage) parseAddress(address uint64) (baseAddr, inUnitAddr uint64) {
	inUnitAddr = address % s.unitSize
	baseAddr = address - inUnitAddr

	return
}

func (s *Storage) createOrGetUnit(baseAddr uint64) *storageUnit {
	unit, ok := s.units[baseAddr]
	if !ok {
		unit = &storageUnit{
			words:   make([]uint64, s.unitSize),
			written: make([]uint64, (s.unitSize+63)/64),
		}
		s.units[baseAddr] = unit
	}

	return unit
}

// Read returns the word at address and whether it has ever been written.
func (s *Storage) Read(address uint64) (value uint64, written bool, err error) {
	if err := s.checkAddress(address); err != nil {
		return 0, false, err
	}

	baseAddr, offset := s.parseAddress(address)

	unit, ok := s.units[baseAddr]
	if !ok {
		return 0, false, nil
	}

	written = unit.written[offset/64]&(1<<(offset%64)) != 0

	return unit.words[offset], written, nil
}

// Write stores a word at address.
func (s *Storage) Write(address, value uint64) error {
	if err := s.checkAddress(address); err != nil {
		return err
	}

	baseAddr, offset := s.parseAddress(address)
	unit := s.createOrGetUnit(baseAddr)
	unit.words[offset] = value
	unit.written[offset/64] |= 1 << (offset % 64)

	return nil
}

// Clear drops every unit.
func (s *Storage) Clear() {
	s.units = make(map[uint64]*storageUnit)
}
