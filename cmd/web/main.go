package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nabii/internal/app"
	"nabii/internal/config"
	"nabii/internal/infrastructure"
	"nabii/pkg/contracts"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the impact investment dashboard",
		Long: `web serves the dashboard pages together with the documents written by the
processor. It only reads the output directory; run the processor first.`,
		Args:          cobra.NoArgs,
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runE,
	}

	flags := cmd.Flags()
	flags.String("config", "", "path to a YAML configuration file")
	flags.Int("port", 0, "port to listen on")
	flags.String("out", "", "directory holding the generated documents")
	flags.String("static", "", "directory holding the dashboard pages")
	flags.Bool("no-browser", false, "do not open a browser")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	return cmd
}

func runE(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}
	defer infrastructure.CloseLogFile()

	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}

	if err := application.Run(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// loadConfig loads the configuration and applies the command line flags on top
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("out") {
		cfg.Output.Dir, _ = flags.GetString("out")
	}
	if flags.Changed("static") {
		cfg.Server.StaticDir, _ = flags.GetString("static")
	}
	if noBrowser, _ := flags.GetBool("no-browser"); noBrowser {
		cfg.Server.OpenBrowser = false
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
