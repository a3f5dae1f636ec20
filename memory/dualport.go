package memory

// PortOp is the request on one port of a dual-port memory in a cycle.
type PortOp struct {
	Enable  bool
	Write   bool
	Address uint64
	Data    uint64
}

// PortResult is the read data of one port.
type PortResult struct {
	Data  uint64
	Valid bool
}

// CycleResult is the outcome of one dual-port cycle.
type CycleResult struct {
	A, B PortResult

	// Collision is set when both ports access the same address.
	Collision        bool
	CollisionAddress uint64

	// WriteCollision is set when both ports write the same address. Neither
	// write is applied.
	WriteCollision bool
}

// DualPortModel is a cycle model of a true dual-port memory over a shared
// storage. Reads in a cycle observe the contents from before its writes.
type DualPortModel struct {
	storage *Storage
}

// NewDualPortModel creates a model over storage.
func NewDualPortModel(storage *Storage) *DualPortModel {
	return &DualPortModel{storage: storage}
}

// Cycle applies one clock of port A and port B.
func (m *DualPortModel) Cycle(a, b PortOp) CycleResult {
	var res CycleResult

	aOK := a.Enable && a.Address < m.storage.Capacity()
	bOK := b.Enable && b.Address < m.storage.Capacity()

	if aOK && bOK && a.Address == b.Address {
		res.Collision = true
		res.CollisionAddress = a.Address
		res.WriteCollision = a.Write && b.Write
	}

	res.A = m.read(a, aOK)
	res.B = m.read(b, bOK)

	if res.WriteCollision {
		return res
	}

	if aOK && a.Write {
		mustSucceed(m.storage.Write(a.Address, a.Data))
	}

	if bOK && b.Write {
		mustSucceed(m.storage.Write(b.Address, b.Data))
	}

	return res
}

func (m *DualPortModel) read(op PortOp, ok bool) PortResult {
	if !ok || op.Write {
		return PortResult{}
	}

	v, _, err := m.storage.Read(op.Address)
	mustSucceed(err)

	return PortResult{Data: v, Valid: true}
}
