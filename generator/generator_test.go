package generator_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/generator"
	"github.com/sarchlab/ramgen/rtl"
	"github.com/sarchlab/ramgen/tb"
)

func configWith(size config.SizeClass, mod func(*config.FeatureSet)) config.Config {
	c := config.Default()
	c.Size = size
	mod(&c.Features)

	return c
}

var _ = Describe("Generate", func() {
	It("should pick the AXI4 generator for a 16GB AXI4 ECC memory", func() {
		cfg := configWith(config.Medium, func(fs *config.FeatureSet) {
			fs.Bus = config.BusAXI4
			fs.Architecture = config.ArchECC
		})

		b, err := generator.Generate(cfg)

		Expect(err).NotTo(HaveOccurred())
		Expect(b.Module).To(Equal(rtl.AXI4))
		Expect(b.ModuleName).To(Equal("axi4_ram_16gb"))
		Expect(b.Params.AddressWidth).To(Equal(28))
		Expect(b.Params.Depth).To(Equal(uint64(268435456)))
		Expect(b.ModuleText).To(ContainSubstring("parameter ADDR_WIDTH = 28"))
		Expect(b.ModuleText).To(ContainSubstring("parameter DEPTH      = 268435456"))
		Expect(b.TestbenchText).To(ContainSubstring("localparam ADDR_WIDTH = 28;"))
	})

	It("should reject an invalid configuration", func() {
		cfg := config.Default()
		cfg.Features.PipelineStages = 9

		b, err := generator.Generate(cfg)

		Expect(b).To(BeNil())
		Expect(errors.Is(err, config.ErrInvalidConfig)).To(BeTrue())
	})

	It("should add a verification environment when compliance is requested", func() {
		cfg := configWith(config.Small, func(fs *config.FeatureSet) {
			fs.VerificationCompliant = true
		})

		b, err := generator.Generate(cfg)

		Expect(err).NotTo(HaveOccurred())
		Expect(b.Testbench).To(Equal(tb.Directed))
		Expect(b.HasVerification).To(BeTrue())
		Expect(b.VerificationText).To(ContainSubstring("class ram_test extends uvm_test;"))
		Expect(b.TestbenchText).NotTo(ContainSubstring("uvm_test"))
		Expect(b.FileNames()).To(Equal([]string{
			"std_ram_8gb.sv", "std_ram_8gb_tb.sv", "std_ram_8gb_uvm.sv",
		}))
	})

	It("should render the verification environment once when it is the testbench", func() {
		cfg := configWith(config.Small, func(fs *config.FeatureSet) {
			fs.Methodology = config.TestVerificationEnv
			fs.VerificationCompliant = true
		})

		b, err := generator.Generate(cfg)

		Expect(err).NotTo(HaveOccurred())
		Expect(b.Testbench).To(Equal(tb.VerificationEnv))
		Expect(b.HasVerification).To(BeTrue())
		Expect(b.TestbenchText).To(Equal(b.VerificationText))
		Expect(b.FileNames()).To(Equal([]string{"std_ram_8gb.sv", "std_ram_8gb_uvm.sv"}))
	})

	It("should leave out the verification environment otherwise", func() {
		b, err := generator.Generate(config.Default())

		Expect(err).NotTo(HaveOccurred())
		Expect(b.HasVerification).To(BeFalse())
		Expect(b.VerificationText).To(BeEmpty())
		Expect(b.FileNames()).To(HaveLen(2))
	})

	It("should give every bundle its own id and the same text", func() {
		cfg := config.Preset(config.Large)

		a, err := generator.Generate(cfg)
		Expect(err).NotTo(HaveOccurred())
		b, err := generator.Generate(cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(a.ID).NotTo(Equal(b.ID))
		Expect(a.ModuleText).To(Equal(b.ModuleText))
		Expect(a.TestbenchText).To(Equal(b.TestbenchText))
	})

	It("should generate a consistent bundle for every combination", func() {
		for _, size := range config.SizeClasses {
			for _, bus := range config.BusInterfaces() {
				for _, arch := range config.Architectures() {
					for _, m := range config.TestMethodologies() {
						cfg := configWith(size, func(fs *config.FeatureSet) {
							fs.Bus = bus
							fs.Architecture = arch
							fs.Methodology = m
							fs.Burst = config.BurstWrapping
							fs.PipelineStages = 2
						})

						b, err := generator.Generate(cfg)

						Expect(err).NotTo(HaveOccurred())
						Expect(generator.Check(b)).To(Succeed())
					}
				}
			}
		}
	})

	It("should generate every preset", func() {
		for _, cfg := range config.Presets() {
			_, err := generator.Generate(cfg)
			Expect(err).NotTo(HaveOccurred())
		}
	})
})

var _ = Describe("Check", func() {
	var b *generator.Bundle

	BeforeEach(func() {
		var err error
		b, err = generator.Generate(config.Default())
		Expect(err).NotTo(HaveOccurred())
	})

	It("should report a mismatched declaration", func() {
		b.TestbenchText = strings.Replace(b.TestbenchText,
			"localparam DEPTH      = 134217728;", "localparam DEPTH      = 4096;", 1)

		err := generator.Check(b)

		var ce *generator.ConsistencyError
		Expect(errors.As(err, &ce)).To(BeTrue())
		Expect(ce.Artifact).To(Equal("testbench"))
		Expect(ce.Name).To(Equal("DEPTH"))
		Expect(ce.Got).To(Equal("4096"))
		Expect(err.Error()).To(Equal("testbench declares DEPTH = 4096, want 134217728"))
	})

	It("should report a missing declaration", func() {
		b.ModuleText = strings.ReplaceAll(b.ModuleText, "parameter ADDR_WIDTH", "parameter ADDR_BITS")

		err := generator.Check(b)

		Expect(err).To(MatchError("module does not declare ADDR_WIDTH"))
	})
})

var _ = Describe("WriteFiles", func() {
	It("should write every artifact into the directory", func() {
		cfg := config.Preset(config.Large)
		b, err := generator.Generate(cfg)
		Expect(err).NotTo(HaveOccurred())

		dir := filepath.Join(GinkgoT().TempDir(), "out")
		paths, err := b.WriteFiles(dir)

		Expect(err).NotTo(HaveOccurred())
		Expect(paths).To(HaveLen(len(b.Files())))

		for _, f := range b.Files() {
			data, err := os.ReadFile(filepath.Join(dir, f.Name))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(f.Text))
		}
	})
})
