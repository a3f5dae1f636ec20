// Package params derives the numeric parameters every generator consumes.
package params

import (
	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/ecc"
)

// Parameters are the derived numbers of one configuration. They are never
// changed after derivation.
type Parameters struct {
	Size           config.SizeClass `json:"size"`
	DataWidth      int              `json:"dataWidth"`
	AddressWidth   int              `json:"addressWidth"`
	Depth          uint64           `json:"depth"`
	InterfaceWidth int              `json:"interfaceWidth"`
	BurstLength    int              `json:"burstLength"`
	ECCWidth       int              `json:"eccWidth"`
	ReadLatency    int              `json:"readLatency"`
	WriteLatency   int              `json:"writeLatency"`
	PowerDomains   int              `json:"powerDomains"`
	LowPowerMode   bool             `json:"lowPowerMode"`
	ClockGating    bool             `json:"clockGating"`
	PipelineStages int              `json:"pipelineStages"`
	ClockDomains   int              `json:"clockDomains"`
}

var presets = map[config.SizeClass]config.CustomParameters{
	config.Small: {
		InterfaceWidth: 64,
		BurstLength:    1,
		ReadLatency:    1,
		WriteLatency:   1,
		PowerDomains:   1,
	},
	config.Medium: {
		InterfaceWidth: 128,
		BurstLength:    8,
		ReadLatency:    2,
		WriteLatency:   1,
		PowerDomains:   2,
		LowPowerMode:   true,
		ClockGating:    true,
	},
	config.Large: {
		InterfaceWidth: 256,
		BurstLength:    16,
		ReadLatency:    3,
		WriteLatency:   2,
		PowerDomains:   4,
		LowPowerMode:   true,
		ClockGating:    true,
	},
}

// PresetCustom returns the preset-table entry of a size class.
func PresetCustom(size config.SizeClass) config.CustomParameters {
	p, ok := presets[size]
	if !ok {
		panic("no preset parameters for size class " + size.String())
	}

	return p
}

// Derive computes the parameters of a validated configuration. Custom
// parameters, when present, replace the preset-table lookups unchanged.
func Derive(cfg config.Config) Parameters {
	custom := PresetCustom(cfg.Size)
	if cfg.Custom != nil {
		custom = *cfg.Custom
	}

	g := cfg.Size.Geometry()

	return Parameters{
		Size:           cfg.Size,
		DataWidth:      g.DataWidth,
		AddressWidth:   g.AddressWidth,
		Depth:          g.Depth,
		InterfaceWidth: custom.InterfaceWidth,
		BurstLength:    custom.BurstLength,
		ECCWidth:       ecc.CheckBits(g.DataWidth),
		ReadLatency:    custom.ReadLatency,
		WriteLatency:   custom.WriteLatency,
		PowerDomains:   custom.PowerDomains,
		LowPowerMode:   custom.LowPowerMode,
		ClockGating:    custom.ClockGating,
		PipelineStages: cfg.Features.PipelineStages,
		ClockDomains:   cfg.Features.ClockDomains,
	}
}

// DeriveFor is Derive over a size class and feature set using the preset
// table.
func DeriveFor(size config.SizeClass, features config.FeatureSet) Parameters {
	return Derive(config.Config{Size: size, Features: features})
}

// StrobeWidth is the byte-enable width of the interface data bus.
func (p Parameters) StrobeWidth() int { return p.InterfaceWidth / 8 }

// Lanes is the number of data words carried side by side on the interface.
func (p Parameters) Lanes() int {
	if p.InterfaceWidth <= p.DataWidth {
		return 1
	}

	return p.InterfaceWidth / p.DataWidth
}

// LaneBits is the number of address bits that select a lane.
func (p Parameters) LaneBits() int {
	n := 0
	for l := p.Lanes(); l > 1; l >>= 1 {
		n++
	}

	return n
}

// CapacityBytes is the storage size in bytes.
func (p Parameters) CapacityBytes() uint64 {
	return p.Depth * uint64(p.DataWidth) / 8
}

// MaxAddress is the highest valid word address.
func (p Parameters) MaxAddress() uint64 { return p.Depth - 1 }
