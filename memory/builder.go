package memory

import (
	"github.com/rs/xid"
	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/ecc"
	"github.com/sarchlab/ramgen/params"
)

// Builder creates Simulators.
type Builder struct {
	dataWidth int
	depth     uint64
	ecc       bool
}

// MakeBuilder returns a Builder for the small size class.
func MakeBuilder() Builder {
	g := config.Small.Geometry()

	return Builder{
		dataWidth: g.DataWidth,
		depth:     g.Depth,
	}
}

// WithDataWidth sets the word width in bits, at most 64.
func (b Builder) WithDataWidth(width int) Builder {
	b.dataWidth = width
	return b
}

// WithDepth sets the number of words.
func (b Builder) WithDepth(depth uint64) Builder {
	b.depth = depth
	return b
}

// WithECC stores a check word next to every data word.
func (b Builder) WithECC(enabled bool) Builder {
	b.ecc = enabled
	return b
}

// WithParameters takes the width and depth from derived parameters.
func (b Builder) WithParameters(p params.Parameters) Builder {
	b.dataWidth = p.DataWidth
	b.depth = p.Depth

	return b
}

// WithConfig takes width and depth from the configuration and enables ECC
// when the configuration asks for error correction.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b = b.WithParameters(params.Derive(cfg))
	b.ecc = cfg.Features.ECCEnabled ||
		cfg.Features.Architecture == config.ArchECC

	return b
}

// Build creates a new Simulator.
func (b Builder) Build(name string) *Simulator {
	if b.dataWidth < 1 || b.dataWidth > 64 {
		panic("memory: data width must be within 1-64")
	}

	if b.depth == 0 {
		panic("memory: depth must be positive")
	}

	s := &Simulator{
		name:      name,
		id:        xid.New().String(),
		dataWidth: b.dataWidth,
		depth:     b.depth,
		storage:   NewStorage(b.depth),
	}

	if b.ecc {
		s.codec = ecc.NewCodec(b.dataWidth)
		s.checks = NewStorage(b.depth)
	}

	return s
}

// NewSimulator creates a Simulator sized by derived parameters.
func NewSimulator(p params.Parameters) *Simulator {
	return MakeBuilder().WithParameters(p).Build("Simulator")
}
