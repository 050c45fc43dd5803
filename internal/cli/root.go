// Package cli implements the uiprobe command line, a thin shell over the
// element layer for checking locators against a live page and inspecting
// settings profiles.
package cli

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/testforge/uicore/internal/application"
	"github.com/testforge/uicore/internal/config"
	"github.com/testforge/uicore/internal/logging"
	"github.com/testforge/uicore/internal/services"
)

// BrowserFactory builds the application factory for a browser configuration
type BrowserFactory func(cfg config.BrowserConfig) services.AppFactory[*application.Browser]

// state is shared by all subcommands of one root command
type state struct {
	envFile     string
	debug       bool
	metricsAddr string

	cfg     *config.Config
	logger  *zap.Logger
	browser BrowserFactory
}

// NewRootCmd creates the uiprobe root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(services.BrowserFactory)
}

func newRootCmd(browser BrowserFactory) *cobra.Command {
	st := &state{browser: browser}

	cmd := &cobra.Command{
		Use:   "uiprobe",
		Short: "Probe web pages with uicore locators",
		Long: `uiprobe resolves locators against a live page the same way tests do,
and prints the settings a profile resolves to.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if st.logger != nil {
				_ = st.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&st.envFile, "env-file", ".env", "Environment file loaded before configuration")
	cmd.PersistentFlags().BoolVar(&st.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&st.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")

	cmd.AddCommand(
		newFindCmd(st),
		newSettingsCmd(st),
	)

	return cmd
}

func (st *state) init() error {
	if st.envFile != "" {
		if err := godotenv.Load(st.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	cfg, err := config.LoadWithDefaults()
	if err != nil {
		return err
	}
	if st.debug {
		cfg.Debug = true
	}
	if st.metricsAddr != "" {
		cfg.Metrics.Addr = st.metricsAddr
	}
	st.cfg = cfg
	st.logger = logging.New(string(cfg.Env), cfg.GetLogLevel())
	return nil
}
