// Package generator assembles the module, testbench and verification
// environment of one configuration into a bundle.
package generator

import (
	"log"

	"github.com/rs/xid"
	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/params"
	"github.com/sarchlab/ramgen/rtl"
	"github.com/sarchlab/ramgen/tb"
)

// Bundle is the generated output of one configuration. A bundle is never
// modified after Generate returns it.
type Bundle struct {
	ID               string            `json:"id"`
	Config           config.Config     `json:"config"`
	Params           params.Parameters `json:"params"`
	Module           rtl.ID            `json:"module"`
	Testbench        tb.ID             `json:"testbench"`
	ModuleName       string            `json:"moduleName"`
	ModuleText       string            `json:"moduleText"`
	TestbenchText    string            `json:"testbenchText"`
	VerificationText string            `json:"verificationText,omitempty"`
	HasVerification  bool              `json:"hasVerification"`
}

// NeedsVerificationEnv reports whether a verification environment is part
// of the bundle, either as the testbench itself or alongside it.
func NeedsVerificationEnv(fs config.FeatureSet) bool {
	return fs.Methodology == config.TestVerificationEnv || fs.VerificationCompliant
}

// Generate validates cfg and renders its bundle.
func Generate(cfg config.Config) (*Bundle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fs := cfg.Features
	p := params.Derive(cfg)
	module := rtl.Select(fs)

	b := &Bundle{
		ID:         xid.New().String(),
		Config:     cfg,
		Params:     p,
		Module:     module,
		Testbench:  tb.Select(fs.Methodology),
		ModuleName: module.ModuleName(cfg.Size),
		ModuleText: rtl.Render(module, p, fs),
	}

	target := tb.TargetFor(module, p, fs)

	if NeedsVerificationEnv(fs) {
		b.VerificationText = tb.Render(tb.VerificationEnv, target)
		b.HasVerification = true
	}

	if b.Testbench == tb.VerificationEnv {
		b.TestbenchText = b.VerificationText
	} else {
		b.TestbenchText = tb.Render(b.Testbench, target)
	}

	if err := Check(b); err != nil {
		log.Panicf("generated bundle is inconsistent: %v", err)
	}

	return b, nil
}
