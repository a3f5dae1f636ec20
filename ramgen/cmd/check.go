package cmd

import (
	"fmt"
	"io"

	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/generator"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <config>",
	Short: "Validate a configuration file and show what it generates.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile(args[0])
		if err != nil {
			return err
		}

		b, err := generator.Generate(cfg)
		if err != nil {
			return err
		}

		return describeBundle(cmd.OutOrStdout(), b)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func describeBundle(w io.Writer, b *generator.Bundle) error {
	p := b.Params

	_, err := fmt.Fprintf(w,
		"size:      %s\n"+
			"geometry:  %d x %d bits, %d address bits\n"+
			"module:    %s (%s)\n"+
			"testbench: %s\n"+
			"files:     %v\n",
		b.Config.Size,
		p.Depth, p.DataWidth, p.AddressWidth,
		b.ModuleName, b.Module,
		b.Testbench,
		b.FileNames())

	return err
}
