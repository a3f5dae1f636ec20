package params_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/params"
)

var _ = Describe("Derive", func() {
	It("should keep data width and depth invariants for every class", func() {
		for _, s := range config.SizeClasses {
			p := params.Derive(config.Preset(s))

			Expect(p.DataWidth).To(Equal(64))
			Expect(p.Depth).To(Equal(uint64(1) << p.AddressWidth))
			Expect(p.ECCWidth).To(Equal(7))
			Expect(p.CapacityBytes() * 8).To(Equal(uint64(8) << (30 + int(s))))
		}
	})

	DescribeTable("preset table",
		func(s config.SizeClass, iw, burst, rl, wl, pd int) {
			p := params.DeriveFor(s, config.Default().Features)

			Expect(p.InterfaceWidth).To(Equal(iw))
			Expect(p.BurstLength).To(Equal(burst))
			Expect(p.ReadLatency).To(Equal(rl))
			Expect(p.WriteLatency).To(Equal(wl))
			Expect(p.PowerDomains).To(Equal(pd))
		},
		Entry("8GB", config.Small, 64, 1, 1, 1, 1),
		Entry("16GB", config.Medium, 128, 8, 2, 1, 2),
		Entry("32GB", config.Large, 256, 16, 3, 2, 4),
	)

	It("should derive the medium AXI4 scenario", func() {
		fs := config.Default().Features
		fs.Bus = config.BusAXI4
		fs.Architecture = config.ArchECC

		p := params.DeriveFor(config.Medium, fs)

		Expect(p.AddressWidth).To(Equal(28))
		Expect(p.Depth).To(Equal(uint64(268435456)))
	})

	It("should carry custom parameters through unchanged", func() {
		custom := config.CustomParameters{
			InterfaceWidth: 512,
			BurstLength:    4,
			ReadLatency:    5,
			WriteLatency:   6,
			PowerDomains:   3,
			LowPowerMode:   true,
		}
		cfg, err := config.NewCustom(config.Small, config.Default().Features, custom)
		Expect(err).ToNot(HaveOccurred())

		p := params.Derive(cfg)

		Expect(p.InterfaceWidth).To(Equal(512))
		Expect(p.BurstLength).To(Equal(4))
		Expect(p.ReadLatency).To(Equal(5))
		Expect(p.WriteLatency).To(Equal(6))
		Expect(p.PowerDomains).To(Equal(3))
		Expect(p.LowPowerMode).To(BeTrue())
		Expect(p.AddressWidth).To(Equal(27))
	})

	It("should copy the pipeline and clock settings", func() {
		p := params.Derive(config.Preset(config.Large))

		Expect(p.PipelineStages).To(Equal(3))
		Expect(p.ClockDomains).To(Equal(2))
	})

	It("should compute the lane layout", func() {
		p := params.Derive(config.Preset(config.Large))

		Expect(p.Lanes()).To(Equal(4))
		Expect(p.LaneBits()).To(Equal(2))
		Expect(p.StrobeWidth()).To(Equal(32))

		small := params.Derive(config.Default())
		Expect(small.Lanes()).To(Equal(1))
		Expect(small.LaneBits()).To(BeZero())
	})
})
