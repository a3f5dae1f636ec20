// Package rtl renders the memory module source for every architecture.
package rtl

import (
	"fmt"

	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/params"
)

// ID names a structural generator.
type ID int

// Structural generators.
const (
	Standard ID = iota
	AXI4
	ECC
	DualPort
	Pipelined
)

var idNames = [...]string{"standard", "axi4", "ecc", "dual_port", "pipelined"}

var modulePrefixes = [...]string{
	"std_ram", "axi4_ram", "ecc_ram", "dual_port_ram", "pipelined_ram",
}

var titles = [...]string{
	"Standard single-port RAM",
	"AXI4 compliant RAM",
	"ECC protected RAM",
	"True dual-port RAM",
	"Pipelined RAM",
}

// IDs lists every structural generator.
func IDs() []ID {
	return []ID{Standard, AXI4, ECC, DualPort, Pipelined}
}

func (id ID) valid() bool {
	return id >= Standard && id <= Pipelined
}

func (id ID) String() string {
	if !id.valid() {
		return fmt.Sprintf("ID(%d)", int(id))
	}

	return idNames[id]
}

// MarshalText renders the generator name.
func (id ID) MarshalText() ([]byte, error) {
	if !id.valid() {
		return nil, fmt.Errorf("rtl: unknown generator %d", int(id))
	}

	return []byte(idNames[id]), nil
}

// Title is the one-line description used in the module header.
func (id ID) Title() string {
	if !id.valid() {
		return ""
	}

	return titles[id]
}

// ModuleName returns the module name for a size class, such as
// std_ram_8gb.
func (id ID) ModuleName(size config.SizeClass) string {
	if !id.valid() {
		panic(fmt.Sprintf("rtl: unknown generator %d", int(id)))
	}

	return modulePrefixes[id] + "_" + size.Slug()
}

// PortStyle groups generators by the ports their modules expose.
type PortStyle int

// Port styles.
const (
	SinglePortStyle PortStyle = iota
	DualPortStyle
	AXI4Style
)

func (s PortStyle) String() string {
	switch s {
	case SinglePortStyle:
		return "single-port"
	case DualPortStyle:
		return "dual-port"
	case AXI4Style:
		return "axi4"
	default:
		return fmt.Sprintf("PortStyle(%d)", int(s))
	}
}

// PortStyle returns the port style of the generated module.
func (id ID) PortStyle() PortStyle {
	switch id {
	case AXI4:
		return AXI4Style
	case DualPort:
		return DualPortStyle
	default:
		return SinglePortStyle
	}
}

// DoneSignal is the single-port output that marks a finished request.
func (id ID) DoneSignal() string {
	if id == Pipelined {
		return "valid_out"
	}

	return "ready"
}

// Latency returns the number of clock edges from the edge that samples a
// request to the edge that presents its result, counting both.
func Latency(id ID, p params.Parameters) int {
	if id == Pipelined {
		return p.PipelineStages + 1
	}

	return 1
}

// SupportsShim reports whether an Avalon or Wishbone wrapper can be placed
// around the module.
func (id ID) SupportsShim() bool {
	return id.PortStyle() == SinglePortStyle
}
