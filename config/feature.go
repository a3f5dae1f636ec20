package config

import (
	"fmt"
	"strings"
)

// BusInterface selects the external bus protocol of the memory module.
type BusInterface int

// Bus interfaces.
const (
	BusPlain BusInterface = iota
	BusAXI4
	BusAvalon
	BusWishbone
)

// Architecture selects the internal organisation of the memory module.
type Architecture int

// Memory architectures.
const (
	ArchStandard Architecture = iota
	ArchECC
	ArchDualPort
	ArchPipelined
)

// TestMethodology selects the testbench style.
type TestMethodology int

// Test methodologies.
const (
	TestDirected TestMethodology = iota
	TestVerificationEnv
	TestCoverageDriven
	TestRandomized
)

// BurstPolicy selects how multi-beat transfers are addressed.
type BurstPolicy int

// Burst policies.
const (
	BurstNone BurstPolicy = iota
	BurstSequential
	BurstWrapping
)

// FeatureSet is the orthogonal collection of choices layered on a size class.
type FeatureSet struct {
	Bus          BusInterface    `json:"bus" yaml:"bus"`
	Architecture Architecture    `json:"architecture" yaml:"architecture"`
	Methodology  TestMethodology `json:"testbench" yaml:"testbench"`
	Burst        BurstPolicy     `json:"burst" yaml:"burst"`

	ECCEnabled            bool `json:"eccEnabled" yaml:"eccEnabled"`
	PerformanceOptimized  bool `json:"performanceOptimized" yaml:"performanceOptimized"`
	VerificationCompliant bool `json:"verificationCompliant" yaml:"verificationCompliant"`
	CoverageEnabled       bool `json:"coverageEnabled" yaml:"coverageEnabled"`
	AssertionsEnabled     bool `json:"assertionsEnabled" yaml:"assertionsEnabled"`

	PipelineStages int `json:"pipelineStages" yaml:"pipelineStages"`
	ClockDomains   int `json:"clockDomains" yaml:"clockDomains"`

	// InitFile is handed to $readmemh in the generated module when set.
	InitFile string `json:"initFile,omitempty" yaml:"initFile,omitempty"`
}

type enumInfo struct {
	field        string
	names        []string
	descriptions []string
	aliases      map[string]int
}

var busInfo = enumInfo{
	field: "bus",
	names: []string{"simple", "axi4", "avalon", "wishbone"},
	descriptions: []string{
		"Basic memory interface with simple read/write signals",
		"ARM AMBA AXI4 interface - industry standard for high-performance",
		"Intel Avalon Memory-Mapped interface - optimized for Intel FPGAs",
		"Open-source Wishbone interface - flexible and well-documented",
	},
	aliases: map[string]int{"plain": 0, "axi": 1},
}

var archInfo = enumInfo{
	field: "architecture",
	names: []string{"standard", "ecc", "dual_port", "pipelined"},
	descriptions: []string{
		"Standard single-port RAM with basic functionality",
		"Error Correction Code - detects and corrects memory errors",
		"True dual-port RAM - simultaneous access from two ports",
		"Pipelined architecture for higher throughput operations",
	},
	aliases: map[string]int{"ecc_protected": 1, "dualport": 2},
}

var testInfo = enumInfo{
	field: "testbench",
	names: []string{"basic", "uvm", "coverage", "randomized"},
	descriptions: []string{
		"Simple directed testbench with basic read/write tests",
		"UVM-compliant testbench with reusable verification components",
		"Coverage-driven verification with functional coverage points",
		"Constrained random testing with advanced stimulus generation",
	},
	aliases: map[string]int{
		"directed":                 0,
		"verification_environment": 1,
		"coverage_driven":          2,
		"random":                   3,
	},
}

var burstInfo = enumInfo{
	field: "burst",
	names: []string{"none", "sequential", "wrap"},
	descriptions: []string{
		"Single-beat transactions only",
		"Sequential burst - incremental addressing",
		"Wrapping burst - address wraps at boundary",
	},
	aliases: map[string]int{"incr": 1, "wrapping": 2},
}

func (e enumInfo) name(i int) string {
	if i < 0 || i >= len(e.names) {
		return fmt.Sprintf("%s(%d)", e.field, i)
	}

	return e.names[i]
}

func (e enumInfo) describe(i int) string {
	if i < 0 || i >= len(e.descriptions) {
		return ""
	}

	return e.descriptions[i]
}

func (e enumInfo) valid(i int) bool {
	return i >= 0 && i < len(e.names)
}

func (e enumInfo) parse(v string) (int, error) {
	token := strings.ToLower(strings.TrimSpace(v))
	token = strings.TrimSuffix(token, "-like")
	token = strings.NewReplacer("-", "_", " ", "_").Replace(token)

	for i, name := range e.names {
		if token == name {
			return i, nil
		}
	}

	if i, ok := e.aliases[token]; ok {
		return i, nil
	}

	return 0, &FieldError{
		Field:  e.field,
		Value:  v,
		Reason: "must be one of " + strings.Join(e.names, ", "),
	}
}

func (e enumInfo) marshal(i int) ([]byte, error) {
	if !e.valid(i) {
		return nil, fmt.Errorf("%w: unknown %s %d", ErrInvalidConfig, e.field, i)
	}

	return []byte(e.names[i]), nil
}

func (b BusInterface) String() string   { return busInfo.name(int(b)) }
func (a Architecture) String() string   { return archInfo.name(int(a)) }
func (m TestMethodology) String() string { return testInfo.name(int(m)) }
func (p BurstPolicy) String() string    { return burstInfo.name(int(p)) }

// Describe returns the human-readable description of the bus interface.
func (b BusInterface) Describe() string { return busInfo.describe(int(b)) }

// Describe returns the human-readable description of the architecture.
func (a Architecture) Describe() string { return archInfo.describe(int(a)) }

// Describe returns the human-readable description of the methodology.
func (m TestMethodology) Describe() string { return testInfo.describe(int(m)) }

// Describe returns the human-readable description of the burst policy.
func (p BurstPolicy) Describe() string { return burstInfo.describe(int(p)) }

// ParseBusInterface accepts "axi4", "AXI4-like", "plain" and the like.
func ParseBusInterface(v string) (BusInterface, error) {
	i, err := busInfo.parse(v)
	return BusInterface(i), err
}

// ParseArchitecture accepts "dual_port", "dual-port", "ecc-protected" and the
// like.
func ParseArchitecture(v string) (Architecture, error) {
	i, err := archInfo.parse(v)
	return Architecture(i), err
}

// ParseTestMethodology accepts "basic", "directed", "uvm" and the like.
func ParseTestMethodology(v string) (TestMethodology, error) {
	i, err := testInfo.parse(v)
	return TestMethodology(i), err
}

// ParseBurstPolicy accepts "none", "sequential", "wrap" and "wrapping".
func ParseBurstPolicy(v string) (BurstPolicy, error) {
	i, err := burstInfo.parse(v)
	return BurstPolicy(i), err
}

func (b BusInterface) MarshalText() ([]byte, error)    { return busInfo.marshal(int(b)) }
func (a Architecture) MarshalText() ([]byte, error)    { return archInfo.marshal(int(a)) }
func (m TestMethodology) MarshalText() ([]byte, error) { return testInfo.marshal(int(m)) }
func (p BurstPolicy) MarshalText() ([]byte, error)     { return burstInfo.marshal(int(p)) }

func (b *BusInterface) UnmarshalText(text []byte) (err error) {
	*b, err = ParseBusInterface(string(text))
	return err
}

func (a *Architecture) UnmarshalText(text []byte) (err error) {
	*a, err = ParseArchitecture(string(text))
	return err
}

func (m *TestMethodology) UnmarshalText(text []byte) (err error) {
	*m, err = ParseTestMethodology(string(text))
	return err
}

func (p *BurstPolicy) UnmarshalText(text []byte) (err error) {
	*p, err = ParseBurstPolicy(string(text))
	return err
}

// BusInterfaces lists every bus interface.
func BusInterfaces() []BusInterface {
	return []BusInterface{BusPlain, BusAXI4, BusAvalon, BusWishbone}
}

// Architectures lists every memory architecture.
func Architectures() []Architecture {
	return []Architecture{ArchStandard, ArchECC, ArchDualPort, ArchPipelined}
}

// TestMethodologies lists every test methodology.
func TestMethodologies() []TestMethodology {
	return []TestMethodology{
		TestDirected, TestVerificationEnv, TestCoverageDriven, TestRandomized,
	}
}

// BurstPolicies lists every burst policy.
func BurstPolicies() []BurstPolicy {
	return []BurstPolicy{BurstNone, BurstSequential, BurstWrapping}
}
