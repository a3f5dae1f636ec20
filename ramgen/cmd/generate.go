package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/generator"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the memory module, testbench and verification environment.",
	Long: `Generate renders the memory module and testbench for a configuration. ` +
		`The configuration comes from --config (or ramgen.json), the ` +
		`RAMGEN_* environment variables and the flags below, in that order.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		cfg, err = applyFlags(cmd, cfg)
		if err != nil {
			return err
		}

		b, err := generator.Generate(cfg)
		if err != nil {
			return err
		}

		logger.WithFields(logrus.Fields{
			"bundle":    b.ID,
			"size":      cfg.Size,
			"module":    b.Module,
			"testbench": b.Testbench,
		}).Info("Generated")

		if recorder != nil {
			recorder.RecordBundle(b)
			recorder.Flush()
		}

		toStdout, _ := cmd.Flags().GetBool("stdout")
		if toStdout {
			return printBundle(cmd.OutOrStdout(), b)
		}

		out, _ := cmd.Flags().GetString("out")

		written, err := b.WriteFiles(out)
		if err != nil {
			return err
		}

		for _, path := range written {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}

		return nil
	},
}

func init() {
	addFeatureFlags(generateCmd)
	generateCmd.Flags().String("out", ".", "Directory to write the generated files to")
	generateCmd.Flags().Bool("stdout", false, "Print the generated files instead of writing them")
	rootCmd.AddCommand(generateCmd)
}

func addFeatureFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("size", "", "Size class: 8GB, 16GB or 32GB")
	flags.Bool("preset", false, "Start from the advanced preset of the size class")
	flags.String("bus", "", "Bus interface: simple, axi4, avalon or wishbone")
	flags.String("arch", "", "Architecture: standard, ecc, dual_port or pipelined")
	flags.String("testbench", "", "Testbench: basic, uvm, coverage or randomized")
	flags.String("burst", "", "Burst policy: none, sequential or wrap")
	flags.Int("stages", 0, "Pipeline stages (1-5)")
	flags.Int("clock-domains", 0, "Clock domains (1-4)")
	flags.Bool("ecc", false, "Enable error correction")
	flags.Bool("uvm", false, "Also generate a UVM verification environment")
	flags.Bool("coverage", false, "Enable functional coverage")
	flags.Bool("assertions", false, "Enable assertions")
	flags.Bool("perf", false, "Optimize for performance")
	flags.String("init-file", "", "Hex file loaded into the memory with $readmemh")
}

// applyFlags layers the feature flags that were set on the command line
// over cfg and validates the result.
func applyFlags(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	flags := cmd.Flags()

	var errs config.ValidationErrors

	collect := func(err error) {
		var fe *config.FieldError
		if errors.As(err, &fe) {
			errs = append(errs, fe)
		}
	}

	if flags.Changed("size") {
		v, _ := flags.GetString("size")
		s, err := config.ParseSizeClass(v)
		collect(err)
		cfg.Size = s
	}

	if preset, _ := flags.GetBool("preset"); preset && len(errs) == 0 {
		cfg = config.Preset(cfg.Size)
	}

	fs := &cfg.Features

	if flags.Changed("bus") {
		v, _ := flags.GetString("bus")
		b, err := config.ParseBusInterface(v)
		collect(err)
		fs.Bus = b
	}

	if flags.Changed("arch") {
		v, _ := flags.GetString("arch")
		a, err := config.ParseArchitecture(v)
		collect(err)
		fs.Architecture = a
	}

	if flags.Changed("testbench") {
		v, _ := flags.GetString("testbench")
		m, err := config.ParseTestMethodology(v)
		collect(err)
		fs.Methodology = m
	}

	if flags.Changed("burst") {
		v, _ := flags.GetString("burst")
		p, err := config.ParseBurstPolicy(v)
		collect(err)
		fs.Burst = p
	}

	if flags.Changed("stages") {
		fs.PipelineStages, _ = flags.GetInt("stages")
	}

	if flags.Changed("clock-domains") {
		fs.ClockDomains, _ = flags.GetInt("clock-domains")
	}

	setBool := func(name string, field *bool) {
		if flags.Changed(name) {
			*field, _ = flags.GetBool(name)
		}
	}

	setBool("ecc", &fs.ECCEnabled)
	setBool("uvm", &fs.VerificationCompliant)
	setBool("coverage", &fs.CoverageEnabled)
	setBool("assertions", &fs.AssertionsEnabled)
	setBool("perf", &fs.PerformanceOptimized)

	if flags.Changed("init-file") {
		fs.InitFile, _ = flags.GetString("init-file")
	}

	if len(errs) > 0 {
		return config.Config{}, errs
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func printBundle(w io.Writer, b *generator.Bundle) error {
	for _, f := range b.Files() {
		if _, err := fmt.Fprintf(w, "// ==== %s ====\n%s\n", f.Name, f.Text); err != nil {
			return err
		}
	}

	return nil
}
