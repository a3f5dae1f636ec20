package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/params"
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the size classes and their advanced presets.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return printPresetsJSON(cmd.OutOrStdout())
		}

		return printPresets(cmd.OutOrStdout())
	},
}

func init() {
	presetsCmd.Flags().Bool("json", false, "Print the presets as JSON")
	rootCmd.AddCommand(presetsCmd)
}

func printPresets(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "SIZE\tDEPTH\tADDR\tBUS\tARCH\tTESTBENCH\tBURST\tIFACE\tLATENCY")

	for _, cfg := range config.Presets() {
		p := params.Derive(cfg)
		fs := cfg.Features

		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t%s/%d\t%d\t%d/%d\n",
			cfg.Size, p.Depth, p.AddressWidth,
			fs.Bus, fs.Architecture, fs.Methodology,
			fs.Burst, p.BurstLength, p.InterfaceWidth,
			p.ReadLatency, p.WriteLatency)
	}

	return tw.Flush()
}

type presetEntry struct {
	Config   config.Config     `json:"config"`
	Params   params.Parameters `json:"params"`
	Capacity uint64            `json:"capacityBytes"`
}

func printPresetsJSON(w io.Writer) error {
	var entries []presetEntry

	for _, cfg := range config.Presets() {
		p := params.Derive(cfg)
		entries = append(entries, presetEntry{
			Config: cfg, Params: p, Capacity: p.CapacityBytes(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(entries)
}
