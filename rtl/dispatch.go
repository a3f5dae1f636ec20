package rtl

import "github.com/sarchlab/ramgen/config"

// A Rule selects a generator when its predicate matches.
type Rule struct {
	Name  string
	Match func(config.FeatureSet) bool
	ID    ID
}

// rules are evaluated top to bottom and the first match wins. The bus
// protocol dominates the internal organisation.
var rules = []Rule{
	{
		Name:  "axi4 bus",
		Match: func(fs config.FeatureSet) bool { return fs.Bus == config.BusAXI4 },
		ID:    AXI4,
	},
	{
		Name: "dual-port architecture",
		Match: func(fs config.FeatureSet) bool {
			return fs.Architecture == config.ArchDualPort
		},
		ID: DualPort,
	},
	{
		Name:  "ecc architecture",
		Match: func(fs config.FeatureSet) bool { return fs.Architecture == config.ArchECC },
		ID:    ECC,
	},
	{
		Name: "pipelined architecture",
		Match: func(fs config.FeatureSet) bool {
			return fs.Architecture == config.ArchPipelined
		},
		ID: Pipelined,
	},
	{
		Name:  "fallback",
		Match: func(config.FeatureSet) bool { return true },
		ID:    Standard,
	},
}

// Rules returns the ordered selection table.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// Select picks the structural generator for a feature set.
func Select(fs config.FeatureSet) ID {
	for _, r := range rules {
		if r.Match(fs) {
			return r.ID
		}
	}

	panic("rtl: no generator rule matched")
}
