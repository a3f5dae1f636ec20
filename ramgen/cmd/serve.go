package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/sarchlab/ramgen/monitoring"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web interface.",
	Long: `Serve starts the web interface for browsing presets, editing the ` +
		`configuration, generating bundles and driving the memory simulator. ` +
		`It runs until interrupted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		port, _ := cmd.Flags().GetInt("port")
		open, _ := cmd.Flags().GetBool("open")

		monitor := monitoring.NewMonitor().
			WithPortNumber(port).
			WithConfig(cfg).
			WithLogger(logger)

		if recorder != nil {
			monitor = monitor.WithRecorder(recorder)
		}

		url, err := monitor.StartServer()
		if err != nil {
			return err
		}

		if open {
			if err := browser.OpenURL(url); err != nil {
				logger.WithError(err).Warn("Cannot open browser")
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		<-ctx.Done()

		logger.Info("Shutting down")

		if recorder != nil {
			recorder.Flush()
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "Port to listen on; 0 picks a free port")
	serveCmd.Flags().Bool("open", false, "Open the interface in the default browser")
	rootCmd.AddCommand(serveCmd)
}
