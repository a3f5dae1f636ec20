// Package tb renders testbenches and verification environments for the
// generated memory modules.
package tb

import (
	"fmt"

	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/memory"
	"github.com/sarchlab/ramgen/params"
	"github.com/sarchlab/ramgen/rtl"
)

// ID names a testbench renderer.
type ID int

// Testbench renderers.
const (
	Directed ID = iota
	CoverageDriven
	Randomized
	VerificationEnv
)

var idNames = [...]string{"directed", "coverage", "randomized", "uvm"}

// IDs lists every renderer.
func IDs() []ID {
	return []ID{Directed, CoverageDriven, Randomized, VerificationEnv}
}

func (id ID) String() string {
	if id < Directed || id > VerificationEnv {
		return fmt.Sprintf("ID(%d)", int(id))
	}

	return idNames[id]
}

func (id ID) MarshalText() ([]byte, error) {
	if id < Directed || id > VerificationEnv {
		return nil, fmt.Errorf("tb: unknown renderer %d", int(id))
	}

	return []byte(idNames[id]), nil
}

var rules = []struct {
	methodology config.TestMethodology
	id          ID
}{
	{config.TestDirected, Directed},
	{config.TestCoverageDriven, CoverageDriven},
	{config.TestRandomized, Randomized},
	{config.TestVerificationEnv, VerificationEnv},
}

// Select picks the renderer for a methodology. It does not depend on the
// structural choice.
func Select(m config.TestMethodology) ID {
	for _, r := range rules {
		if r.methodology == m {
			return r.id
		}
	}

	panic(fmt.Sprintf("tb: no renderer for methodology %v", m))
}

// DUT describes the module a testbench drives.
type DUT struct {
	Name    string
	Core    rtl.ID
	Ports   rtl.PortStyle
	Latency int
}

// DUTFor describes the module generated by id. The latency of a pipelined
// module is measured on the pipeline model.
func DUTFor(id rtl.ID, p params.Parameters) DUT {
	latency := rtl.Latency(id, p)
	if id == rtl.Pipelined {
		latency = pipelineLatency(p.PipelineStages)
	}

	return DUT{
		Name:    id.ModuleName(p.Size),
		Core:    id,
		Ports:   id.PortStyle(),
		Latency: latency,
	}
}

// pipelineLatency issues one read into the pipeline model and counts the
// clock edges from the one that samples it to the one that completes it.
func pipelineLatency(stages int) int {
	pipe := memory.NewPipelineModel(memory.NewStorage(1), stages)

	edges := 1
	for c := pipe.Tick(memory.Op{Read: true}); !c.Valid; c = pipe.Tick(memory.Op{}) {
		edges++
	}

	return edges
}

// Target is everything a renderer needs to know.
type Target struct {
	Params     params.Parameters
	DUT        DUT
	Burst      config.BurstPolicy
	Coverage   bool
	Assertions bool
}

// TargetFor builds the target of a configuration whose module was rendered
// by id.
func TargetFor(id rtl.ID, p params.Parameters, fs config.FeatureSet) Target {
	return Target{
		Params:     p,
		DUT:        DUTFor(id, p),
		Burst:      fs.Burst,
		Coverage:   fs.CoverageEnabled,
		Assertions: fs.AssertionsEnabled,
	}
}

// ModuleName returns the top-level module name a renderer emits.
func ModuleName(id ID, t Target) string {
	if id == VerificationEnv {
		return "tb_" + t.DUT.Name + "_uvm"
	}

	return "tb_" + t.DUT.Name
}
