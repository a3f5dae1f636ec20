package rtl_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/rtl"
)

var _ = Describe("Select", func() {
	It("should let axi4 win over every architecture", func() {
		for _, a := range config.Architectures() {
			fs := config.FeatureSet{Bus: config.BusAXI4, Architecture: a}
			Expect(rtl.Select(fs)).To(Equal(rtl.AXI4))
		}
	})

	It("should be total and deterministic over all bus and architecture pairs", func() {
		want := map[config.Architecture]rtl.ID{
			config.ArchStandard:  rtl.Standard,
			config.ArchECC:       rtl.ECC,
			config.ArchDualPort:  rtl.DualPort,
			config.ArchPipelined: rtl.Pipelined,
		}

		for _, b := range config.BusInterfaces() {
			if b == config.BusAXI4 {
				continue
			}

			for _, a := range config.Architectures() {
				fs := config.FeatureSet{Bus: b, Architecture: a}
				Expect(rtl.Select(fs)).To(Equal(want[a]))
				Expect(rtl.Select(fs)).To(Equal(rtl.Select(fs)))
			}
		}
	})

	It("should ignore the ecc flag when choosing", func() {
		fs := config.FeatureSet{Architecture: config.ArchDualPort, ECCEnabled: true}
		Expect(rtl.Select(fs)).To(Equal(rtl.DualPort))
	})

	It("should expose the rules in precedence order", func() {
		var ids []rtl.ID
		for _, r := range rtl.Rules() {
			ids = append(ids, r.ID)
		}

		Expect(ids).To(Equal([]rtl.ID{
			rtl.AXI4, rtl.DualPort, rtl.ECC, rtl.Pipelined, rtl.Standard,
		}))
	})

	It("should select axi4 for the medium axi4 ecc scenario", func() {
		fs := config.Preset(config.Medium).Features
		Expect(fs.Architecture).To(Equal(config.ArchECC))
		Expect(rtl.Select(fs)).To(Equal(rtl.AXI4))
	})
})

var _ = Describe("ID", func() {
	It("should name modules by size class", func() {
		Expect(rtl.Standard.ModuleName(config.Small)).To(Equal("std_ram_8gb"))
		Expect(rtl.AXI4.ModuleName(config.Medium)).To(Equal("axi4_ram_16gb"))
		Expect(rtl.DualPort.ModuleName(config.Large)).To(Equal("dual_port_ram_32gb"))
	})

	It("should group port styles", func() {
		Expect(rtl.AXI4.PortStyle()).To(Equal(rtl.AXI4Style))
		Expect(rtl.DualPort.PortStyle()).To(Equal(rtl.DualPortStyle))
		Expect(rtl.ECC.PortStyle()).To(Equal(rtl.SinglePortStyle))
		Expect(rtl.Pipelined.SupportsShim()).To(BeTrue())
		Expect(rtl.AXI4.SupportsShim()).To(BeFalse())
	})
})
