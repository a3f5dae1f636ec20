// Package cmd provides the command-line interface for ramgen.
package cmd

import (
	"errors"
	"os"

	"github.com/sarchlab/ramgen/config"
	"github.com/sarchlab/ramgen/datarecording"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var (
	logger   = logrus.StandardLogger()
	recorder datarecording.Recorder
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ramgen",
	Short: "ramgen generates Verilog memories, testbenches and UVM environments.",
	Long: `ramgen turns a memory size class and a feature set into a ` +
		`Verilog/SystemVerilog memory module, a matching testbench and, ` +
		`when requested, a UVM verification environment. It also runs a ` +
		`behavioural model of the memory.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Configuration file (JSON or YAML)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("record", "", "Record bundles and simulator logs into this SQLite database")
	flags.String("env-file", "", "Load environment variables from this file instead of .env")
}

// setup loads the environment, configures logging and opens the recorder.
func setup(cmd *cobra.Command, _ []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = os.Getenv(config.EnvLogLevel)
	}

	if err := setupLogging(level); err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("record")
	if path == "" {
		return nil
	}

	db, err := datarecording.New(path)
	if err != nil {
		return err
	}

	recorder = datarecording.NewRecorder(db)
	atexit.Register(func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Error("Closing recording")
		}
	})

	logger.WithField("database", path+".sqlite3").Info("Recording enabled")

	return nil
}

func setupLogging(level string) error {
	if level == "" {
		logger.SetLevel(logrus.InfoLevel)
		return nil
	}

	l, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	logger.SetLevel(l)

	return nil
}

// loadConfig reads the configuration named by --config, or the first file
// on the search path, and applies environment overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, source, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if source != "" {
		logger.WithField("file", source).Debug("Configuration loaded")
	}

	return config.ApplyEnv(cfg)
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				logger.WithField("field", fe.Field).Error(fe.Error())
			}
		} else {
			logger.Error(err)
		}

		atexit.Exit(1)
	}

	atexit.Exit(0)
}
