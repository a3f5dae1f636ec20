package cmd

import (
	"fmt"

	"github.com/sarchlab/ramgen/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starting configuration file.",
	Long: `Init writes the default configuration, or the advanced preset of a ` +
		`size class, to path (ramgen.json by default). A .yaml or .yml path ` +
		`is written as YAML.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "ramgen.json"
		if len(args) == 1 {
			path = args[0]
		}

		preset, _ := cmd.Flags().GetString("preset")
		force, _ := cmd.Flags().GetBool("force")

		cfg, err := startingConfig(preset)
		if err != nil {
			return err
		}

		if err := cfg.Save(path, force); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)

		return nil
	},
}

func init() {
	initCmd.Flags().String("preset", "", "Start from the advanced preset of this size class")
	initCmd.Flags().Bool("force", false, "Replace an existing file")
	rootCmd.AddCommand(initCmd)
}

func startingConfig(preset string) (config.Config, error) {
	if preset == "" {
		return config.Default(), nil
	}

	size, err := config.ParseSizeClass(preset)
	if err != nil {
		return config.Config{}, err
	}

	return config.Preset(size), nil
}
