// Package config describes a memory configuration: a size class, a feature
// set and an optional fully custom parameter set.
package config

import (
	"math/bits"
	"strconv"
)

// Limits on the numeric feature fields.
const (
	MinPipelineStages = 1
	MaxPipelineStages = 5
	MinClockDomains   = 1
	MaxClockDomains   = 4
)

// CustomParameters replaces the preset-table lookups of a size class.
type CustomParameters struct {
	InterfaceWidth int  `json:"interfaceWidth" yaml:"interfaceWidth"`
	BurstLength    int  `json:"burstLength" yaml:"burstLength"`
	ReadLatency    int  `json:"readLatency" yaml:"readLatency"`
	WriteLatency   int  `json:"writeLatency" yaml:"writeLatency"`
	PowerDomains   int  `json:"powerDomains" yaml:"powerDomains"`
	LowPowerMode   bool `json:"lowPowerMode" yaml:"lowPowerMode"`
	ClockGating    bool `json:"clockGating" yaml:"clockGating"`
}

// Config is a complete memory configuration.
type Config struct {
	Size     SizeClass         `json:"size" yaml:"size"`
	Features FeatureSet        `json:"features" yaml:"features"`
	Custom   *CustomParameters `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// New returns a validated configuration using the preset parameter table.
func New(size SizeClass, features FeatureSet) (Config, error) {
	c := Config{Size: size, Features: features}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// NewCustom returns a validated configuration with custom parameters.
func NewCustom(
	size SizeClass,
	features FeatureSet,
	custom CustomParameters,
) (Config, error) {
	c := Config{Size: size, Features: features, Custom: &custom}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Default returns the small directed-test configuration.
func Default() Config {
	return Config{
		Size: Small,
		Features: FeatureSet{
			Bus:            BusPlain,
			Architecture:   ArchStandard,
			Methodology:    TestDirected,
			Burst:          BurstNone,
			PipelineStages: 1,
			ClockDomains:   1,
		},
	}
}

// Preset returns the advanced preset of a size class.
func Preset(size SizeClass) Config {
	c := Config{Size: size}

	switch size {
	case Small:
		c.Features = FeatureSet{
			Bus:               BusPlain,
			Architecture:      ArchStandard,
			Methodology:       TestDirected,
			Burst:             BurstNone,
			AssertionsEnabled: true,
			PipelineStages:    1,
			ClockDomains:      1,
		}
	case Medium:
		c.Features = FeatureSet{
			Bus:                  BusAXI4,
			Architecture:         ArchECC,
			Methodology:          TestCoverageDriven,
			Burst:                BurstSequential,
			ECCEnabled:           true,
			PerformanceOptimized: true,
			CoverageEnabled:      true,
			AssertionsEnabled:    true,
			PipelineStages:       2,
			ClockDomains:         1,
		}
	case Large:
		c.Features = FeatureSet{
			Bus:                   BusAXI4,
			Architecture:          ArchDualPort,
			Methodology:           TestVerificationEnv,
			Burst:                 BurstWrapping,
			ECCEnabled:            true,
			PerformanceOptimized:  true,
			VerificationCompliant: true,
			CoverageEnabled:       true,
			AssertionsEnabled:     true,
			PipelineStages:        3,
			ClockDomains:          2,
		}
	default:
		panic("unknown size class " + size.String())
	}

	return c
}

// Presets returns the advanced preset of every size class.
func Presets() []Config {
	out := make([]Config, 0, len(SizeClasses))
	for _, s := range SizeClasses {
		out = append(out, Preset(s))
	}

	return out
}

// WithFeatures returns a copy of c with a different feature set.
func (c Config) WithFeatures(fs FeatureSet) Config {
	c.Features = fs
	return c
}

// Validate reports every field that is out of range.
func (c Config) Validate() error {
	var errs ValidationErrors

	reject := func(field string, value any, reason string) {
		errs = append(errs, &FieldError{Field: field, Value: value, Reason: reason})
	}

	if !c.Size.Valid() {
		reject("size", int(c.Size), "is not a known size class")
	}

	fs := c.Features
	if !busInfo.valid(int(fs.Bus)) {
		reject("bus", int(fs.Bus), "is not a known bus interface")
	}

	if !archInfo.valid(int(fs.Architecture)) {
		reject("architecture", int(fs.Architecture), "is not a known architecture")
	}

	if !testInfo.valid(int(fs.Methodology)) {
		reject("testbench", int(fs.Methodology), "is not a known methodology")
	}

	if !burstInfo.valid(int(fs.Burst)) {
		reject("burst", int(fs.Burst), "is not a known burst policy")
	}

	if fs.PipelineStages < MinPipelineStages || fs.PipelineStages > MaxPipelineStages {
		reject("pipelineStages", fs.PipelineStages, "must be within 1-5")
	}

	if fs.ClockDomains < MinClockDomains || fs.ClockDomains > MaxClockDomains {
		reject("clockDomains", fs.ClockDomains, "must be within 1-4")
	}

	if c.Custom != nil {
		errs = append(errs, c.Custom.validate()...)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (p *CustomParameters) validate() ValidationErrors {
	var errs ValidationErrors

	check := func(field string, v, lo, hi int, pow2 bool) {
		switch {
		case v < lo || v > hi:
			errs = append(errs, &FieldError{
				Field: field, Value: v,
				Reason: "must be within " + strconv.Itoa(lo) + "-" + strconv.Itoa(hi),
			})
		case pow2 && bits.OnesCount(uint(v)) != 1:
			errs = append(errs, &FieldError{
				Field: field, Value: v, Reason: "must be a power of two",
			})
		}
	}

	check("custom.interfaceWidth", p.InterfaceWidth, DataWidth, 1024, true)
	check("custom.burstLength", p.BurstLength, 1, 256, true)
	check("custom.readLatency", p.ReadLatency, 1, 16, false)
	check("custom.writeLatency", p.WriteLatency, 1, 16, false)
	check("custom.powerDomains", p.PowerDomains, 1, 8, false)

	return errs
}

// applyDefaults fills zero numeric fields left out of a file.
func (c *Config) applyDefaults() {
	if c.Features.PipelineStages == 0 {
		c.Features.PipelineStages = 1
	}

	if c.Features.ClockDomains == 0 {
		c.Features.ClockDomains = 1
	}
}
