package memory

// Op is one memory operation entering a model in a cycle.
type Op struct {
	Write   bool
	Read    bool
	Address uint64
	Data    uint64
}

func (o Op) active() bool { return o.Write || o.Read }

// Completion is what leaves the last pipeline stage in a cycle.
type Completion struct {
	Op    Op
	Data  uint64
	Valid bool

	// Dropped is set when the address was beyond the storage capacity.
	Dropped bool
}

// PipelineModel is a cycle model of a pipelined memory. Operations move one
// stage per Tick and touch storage only when they leave the last stage.
type PipelineModel struct {
	storage  *Storage
	numStage int
	stages   []*Op
}

// NewPipelineModel creates a model with numStage register stages.
func NewPipelineModel(storage *Storage, numStage int) *PipelineModel {
	if numStage < 1 {
		panic("memory: a pipeline needs at least one stage")
	}

	p := &PipelineModel{
		storage:  storage,
		numStage: numStage,
	}
	p.Clear()

	return p
}

// Clear discards all the operations in the pipeline.
func (p *PipelineModel) Clear() {
	p.stages = make([]*Op, p.numStage)
}

// InFlight returns the number of operations inside the pipeline.
func (p *PipelineModel) InFlight() int {
	n := 0

	for _, s := range p.stages {
		if s != nil {
			n++
		}
	}

	return n
}

// Tick advances the pipeline by one clock. The last stage is served first,
// then every stage shifts forward and in, when active, enters stage zero.
// An operation issued in cycle t completes in cycle t+numStage.
func (p *PipelineModel) Tick(in Op) Completion {
	out := p.serve(p.stages[p.numStage-1])

	for i := p.numStage - 1; i > 0; i-- {
		p.stages[i] = p.stages[i-1]
	}

	p.stages[0] = nil

	if in.active() {
		op := in
		p.stages[0] = &op
	}

	return out
}

func (p *PipelineModel) serve(op *Op) Completion {
	if op == nil {
		return Completion{}
	}

	c := Completion{Op: *op, Valid: true}

	if op.Address >= p.storage.Capacity() {
		c.Dropped = true
		return c
	}

	if op.Write {
		mustSucceed(p.storage.Write(op.Address, op.Data))
	}

	if op.Read {
		v, _, err := p.storage.Read(op.Address)
		mustSucceed(err)
		c.Data = v
	}

	return c
}

// Latency returns the number of cycles from issue to completion.
func (p *PipelineModel) Latency() int {
	return p.numStage
}
