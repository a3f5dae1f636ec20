package datarecording

import (
	"github.com/sarchlab/ramgen/generator"
	"github.com/sarchlab/ramgen/memory"
)

// Table names used by Recorder.
const (
	BundleTable       = "bundles"
	SimulatorLogTable = "simulator_logs"
)

// BundleEntry is one row of the bundle table.
type BundleEntry struct {
	ID                string
	Size              string
	Bus               string
	Architecture      string
	Module            string
	Testbench         string
	ModuleName        string
	DataWidth         int
	AddressWidth      int
	Depth             uint64
	ECCWidth          int
	BurstLength       int
	PipelineStages    int
	HasVerification   bool
	ModuleBytes       int
	TestbenchBytes    int
	VerificationBytes int
}

// SimulatorLogEntry is one simulator log line.
type SimulatorLogEntry struct {
	Session string
	Seq     int
	Entry   string
	Error   bool
}

// Recorder keeps a history of generated bundles and simulator sessions.
type Recorder interface {
	RecordBundle(b *generator.Bundle)
	RecordSimulatorLog(session string, logs []string)
	Flush()
}

// NewRecorder records into w. Tables are created on first use.
func NewRecorder(w DataRecorder) Recorder {
	return &tableRecorder{writer: w, created: make(map[string]bool)}
}

type tableRecorder struct {
	writer  DataRecorder
	created map[string]bool
}

func (r *tableRecorder) ensureTable(name string, sample any) {
	if r.created[name] {
		return
	}

	r.writer.CreateTable(name, sample)
	r.created[name] = true
}

func (r *tableRecorder) RecordBundle(b *generator.Bundle) {
	entry := BundleEntry{
		ID:                b.ID,
		Size:              b.Config.Size.String(),
		Bus:               b.Config.Features.Bus.String(),
		Architecture:      b.Config.Features.Architecture.String(),
		Module:            b.Module.String(),
		Testbench:         b.Testbench.String(),
		ModuleName:        b.ModuleName,
		DataWidth:         b.Params.DataWidth,
		AddressWidth:      b.Params.AddressWidth,
		Depth:             b.Params.Depth,
		ECCWidth:          b.Params.ECCWidth,
		BurstLength:       b.Params.BurstLength,
		PipelineStages:    b.Params.PipelineStages,
		HasVerification:   b.HasVerification,
		ModuleBytes:       len(b.ModuleText),
		TestbenchBytes:    len(b.TestbenchText),
		VerificationBytes: len(b.VerificationText),
	}

	r.ensureTable(BundleTable, entry)
	r.writer.InsertData(BundleTable, entry)
}

// RecordSimulatorLog stores the lines of one session. Lines carrying an
// error token are flagged.
func (r *tableRecorder) RecordSimulatorLog(session string, logs []string) {
	r.ensureTable(SimulatorLogTable, SimulatorLogEntry{})

	for i, l := range logs {
		r.writer.InsertData(SimulatorLogTable, SimulatorLogEntry{
			Session: session,
			Seq:     i,
			Entry:   l,
			Error:   memory.IsError(l),
		})
	}
}

func (r *tableRecorder) Flush() {
	r.writer.Flush()
}
