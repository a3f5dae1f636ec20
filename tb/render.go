package tb

import (
	"embed"
	"fmt"
	"log"
	"math/bits"
	"strings"
	"text/template"

	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/memory"
	"github.com/sarchlab/ramgen/params"
	"github.com/sarchlab/ramgen/rtl"
)

// RandomIterations is the number of stimuli the randomized bench applies.
const RandomIterations = 10000

// UVMSequenceItems is the length of the default UVM sequence.
const UVMSequenceItems = 200

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("tb").Funcs(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}).ParseFS(templateFS, "templates/*.tmpl"))

var titles = [...]string{
	"Directed testbench",
	"Coverage-driven testbench",
	"Constrained random testbench",
	"UVM verification environment",
}

type benchData struct {
	Title  string
	Name   string
	DUT    DUT
	P      params.Parameters
	Target Target

	AXI       bool
	Dual      bool
	ECC       bool
	Pipelined bool
	Done      string
	AXISize   int

	Coverage    bool
	LowEnd      uint64
	MidEnd      uint64
	Ones        uint64
	WalkingOnes []string

	Vectors   []memory.Vector
	Overwrite memory.Vector
	LastWord  memory.Vector
	Collision []collisionStep
	Final     memory.Vector
	Burst     *burstPlan

	Iterations    int
	SequenceItems int
}

type collisionStep struct {
	Comment       string
	A, B          memory.PortOp
	WantCollision bool
	CheckA        bool
	WantA         uint64
}

type burstPlan struct {
	Mode  string
	Start uint64
	Len   int
	Beats []memory.Vector
	Wrap  *burstRead
}

type burstRead struct {
	Start uint64
	Beats []memory.Vector
}

// Addr formats a word address as a sized Verilog literal.
func (d benchData) Addr(a uint64) string {
	return fmt.Sprintf("%d'h%X", d.P.AddressWidth, a)
}

// Word formats a data word as a sized Verilog literal.
func (d benchData) Word(v uint64) string {
	return fmt.Sprintf("%d'h%0*X", d.P.DataWidth, (d.P.DataWidth+3)/4, v)
}

// Render produces the testbench text of renderer id.
func Render(id ID, t Target) string {
	if id < Directed || id > VerificationEnv {
		log.Panicf("tb: unknown renderer %d", int(id))
	}

	data := newBenchData(id, t)

	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, id.String()+".tmpl", data); err != nil {
		log.Panicf("tb: rendering %s: %v", id, err)
	}

	return sb.String()
}

func newBenchData(id ID, t Target) benchData {
	p := t.Params

	d := benchData{
		Title:     titles[id],
		Name:      ModuleName(id, t),
		DUT:       t.DUT,
		P:         p,
		Target:    t,
		AXI:       t.DUT.Ports == rtl.AXI4Style,
		Dual:      t.DUT.Ports == rtl.DualPortStyle,
		ECC:       t.DUT.Core == rtl.ECC,
		Pipelined: t.DUT.Core == rtl.Pipelined,
		Done:      t.DUT.Core.DoneSignal(),
		AXISize:   bits.Len(uint(p.DataWidth/8)) - 1,
		Coverage:  t.Coverage || id == CoverageDriven,
		Ones:      wordMask(p.DataWidth),

		Iterations:    RandomIterations,
		SequenceItems: UVMSequenceItems,
	}

	d.LowEnd, d.MidEnd = thirds(p.Depth)
	d.WalkingOnes = walkingOnes(d)

	d.Vectors = memory.BasicVectors(p.Depth, p.DataWidth)
	d.Overwrite = memory.Vector{Address: 0, Value: ^d.Vectors[0].Value & d.Ones}
	d.LastWord = memory.Vector{Address: p.Depth - 1, Value: d.Ones}

	if d.Dual {
		d.Collision, d.Final = collisionPlan(p)
	}

	if d.AXI && t.Burst != config.BurstNone && p.BurstLength > 1 {
		d.Burst = newBurstPlan(p, t.Burst)
	}

	return d
}

func wordMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}

	return 1<<width - 1
}

// thirds splits the address space into low, mid and high bins and returns
// the last address of the first two.
func thirds(depth uint64) (lowEnd, midEnd uint64) {
	return depth/3 - 1, 2*depth/3 - 1
}

func walkingOnes(d benchData) []string {
	out := make([]string, d.P.DataWidth)
	for i := range out {
		out[i] = d.Word(1 << i)
	}

	return out
}

// collisionAddress is the word the dual-port collision checks use.
const collisionAddress = 0x40

// collisionPlan runs the collision scenario through the dual-port model so
// the bench expects exactly what the model does.
func collisionPlan(p params.Parameters) ([]collisionStep, memory.Vector) {
	storage := memory.NewStorage(p.Depth)
	model := memory.NewDualPortModel(storage)
	mask := wordMask(p.DataWidth)
	addr := uint64(collisionAddress) % p.Depth

	steps := []collisionStep{
		{
			Comment: "port A writes the initial value",
			A:       memory.PortOp{Enable: true, Write: true, Address: addr, Data: 0x1111111111111111 & mask},
			B:       memory.PortOp{Enable: true, Address: (addr + 1) % p.Depth},
		},
		{
			Comment: "both ports write the same word: neither write lands",
			A:       memory.PortOp{Enable: true, Write: true, Address: addr, Data: 0x2222222222222222 & mask},
			B:       memory.PortOp{Enable: true, Write: true, Address: addr, Data: 0x3333333333333333 & mask},
		},
		{
			Comment: "port A reads while port B writes: A sees the old value",
			A:       memory.PortOp{Enable: true, Address: addr},
			B:       memory.PortOp{Enable: true, Write: true, Address: addr, Data: 0x4444444444444444 & mask},
		},
	}

	for i := range steps {
		res := model.Cycle(steps[i].A, steps[i].B)
		steps[i].WantCollision = res.Collision
		steps[i].CheckA = res.A.Valid
		steps[i].WantA = res.A.Data
	}

	final, _, err := storage.Read(addr)
	if err != nil {
		log.Panicf("tb: %v", err)
	}

	return steps, memory.Vector{Address: addr, Value: final}
}

// burstBase is the aligned word where burst checks start.
const burstBase = 0x200

func newBurstPlan(p params.Parameters, policy config.BurstPolicy) *burstPlan {
	mask := wordMask(p.DataWidth)
	start := uint64(burstBase) % p.Depth

	plan := &burstPlan{Mode: "2'b01", Start: start, Len: p.BurstLength}
	for i := 0; i < p.BurstLength; i++ {
		plan.Beats = append(plan.Beats, memory.Vector{
			Address: start + uint64(i),
			Value:   (0xB0B0000000000000 | uint64(i)) & mask,
		})
	}

	if policy == config.BurstWrapping {
		// A wrapping read from the middle of the window returns the
		// upper half first, then wraps to the window base.
		first := start + uint64(p.BurstLength/2)
		read := &burstRead{Start: first}
		addr := first

		for i := 0; i < p.BurstLength; i++ {
			read.Beats = append(read.Beats, plan.Beats[addr-start])
			addr = WrapNext(addr, p.BurstLength)
		}

		plan.Wrap = read
	}

	return plan
}

// WrapNext returns the address after a in a wrapping burst of length n.
func WrapNext(a uint64, n int) uint64 {
	m := uint64(n - 1)
	return (a &^ m) | ((a + 1) & m)
}
