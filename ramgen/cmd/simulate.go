package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/memory"
	"github.com/spf13/cobra"
)

// simPlan is the sequence of simulator accesses requested on the command
// line. Writes are applied first, then bit flips, then reads.
type simPlan struct {
	writes []simWrite
	flips  []simFlip
	reads  []int64
	test   bool
}

type simWrite struct {
	addr  int64
	value uint64
}

type simFlip struct {
	addr int64
	bit  int
}

var errSimulationFailed = errors.New("simulation reported errors")

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run accesses against the behavioural memory model.",
	Long: `Simulate builds the behavioural model of the configured memory and ` +
		`applies the requested writes, bit flips and reads in that order. ` +
		`Addresses and values accept 0x, 0o and 0b prefixes.`,
	Example: `  ramgen simulate --write 0x10=0xCAFE --read 0x10
  ramgen simulate --ecc --write 0x4=0xFF --flip 0x4:3 --read 0x4
  ramgen simulate --size 32GB --test`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		flags := cmd.Flags()

		if flags.Changed("size") {
			v, _ := flags.GetString("size")
			if cfg.Size, err = config.ParseSizeClass(v); err != nil {
				return err
			}
		}

		if flags.Changed("ecc") {
			cfg.Features.ECCEnabled, _ = flags.GetBool("ecc")
		}

		plan, err := planFromFlags(cmd)
		if err != nil {
			return err
		}

		sim := memory.MakeBuilder().WithConfig(cfg).Build("Simulator")
		logs := runSimulation(sim, plan)

		if err := printLogs(cmd.OutOrStdout(), logs); err != nil {
			return err
		}

		if recorder != nil {
			recorder.RecordSimulatorLog(sim.ID(), logs)
			recorder.Flush()
		}

		if !memory.Passed(logs) {
			return errSimulationFailed
		}

		return nil
	},
}

func init() {
	flags := simulateCmd.Flags()
	flags.String("size", "", "Size class: 8GB, 16GB or 32GB")
	flags.Bool("ecc", false, "Protect words with error correction")
	flags.Bool("test", false, "Run the basic write and read-back test")
	flags.StringArray("write", nil, "Write a word, as addr=value")
	flags.StringArray("read", nil, "Read a word at addr")
	flags.StringArray("flip", nil, "Flip one stored bit, as addr:bit")
	rootCmd.AddCommand(simulateCmd)
}

func planFromFlags(cmd *cobra.Command) (simPlan, error) {
	var plan simPlan

	flags := cmd.Flags()
	plan.test, _ = flags.GetBool("test")

	writes, _ := flags.GetStringArray("write")
	for _, w := range writes {
		addr, value, err := parseAssignment(w)
		if err != nil {
			return simPlan{}, err
		}

		plan.writes = append(plan.writes, simWrite{addr: addr, value: value})
	}

	flips, _ := flags.GetStringArray("flip")
	for _, f := range flips {
		addr, bit, err := parseFlip(f)
		if err != nil {
			return simPlan{}, err
		}

		plan.flips = append(plan.flips, simFlip{addr: addr, bit: bit})
	}

	reads, _ := flags.GetStringArray("read")
	for _, r := range reads {
		addr, err := parseAddress(r)
		if err != nil {
			return simPlan{}, err
		}

		plan.reads = append(plan.reads, addr)
	}

	return plan, nil
}

// runSimulation applies plan to sim and returns the simulator log. A
// rejected step leaves an ERROR entry and the remaining steps still run.
func runSimulation(sim *memory.Simulator, plan simPlan) []string {
	for _, w := range plan.writes {
		if err := sim.Write(w.addr, w.value); err != nil {
			logger.WithError(err).Debug("Write rejected")
		}
	}

	for _, f := range plan.flips {
		if err := sim.InjectBitFlip(f.addr, f.bit); err != nil {
			logger.WithError(err).Debug("Flip rejected")
		}
	}

	for _, addr := range plan.reads {
		if _, err := sim.Read(addr); err != nil {
			logger.WithError(err).Debug("Read rejected")
		}
	}

	if plan.test {
		sim.RunBasicTest()
	}

	return sim.Logs()
}

func parseAddress(s string) (int64, error) {
	addr, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}

	return addr, nil
}

func parseAssignment(s string) (int64, uint64, error) {
	a, v, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, fmt.Errorf("invalid write %q, want addr=value", s)
	}

	addr, err := parseAddress(a)
	if err != nil {
		return 0, 0, err
	}

	value, err := strconv.ParseUint(strings.TrimSpace(v), 0, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid value %q", v)
	}

	return addr, value, nil
}

func parseFlip(s string) (int64, int, error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid flip %q, want addr:bit", s)
	}

	addr, err := parseAddress(a)
	if err != nil {
		return 0, 0, err
	}

	bit, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid bit %q", b)
	}

	return addr, bit, nil
}

func printLogs(w io.Writer, logs []string) error {
	for _, line := range logs {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
