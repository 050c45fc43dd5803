package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/testforge/uicore/internal/configurations"
	"github.com/testforge/uicore/internal/settings"
)

// SettingsFlags holds the flags shared by the settings commands
type SettingsFlags struct {
	Profile string
	Dir     string
}

func newSettingsCmd(st *state) *cobra.Command {
	flags := &SettingsFlags{}

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect settings profiles",
	}
	cmd.PersistentFlags().StringVar(&flags.Profile, "profile", "", "Settings profile; overrides PROFILE")
	cmd.PersistentFlags().StringVar(&flags.Dir, "dir", "", "Settings directory; overrides SETTINGS_DIR")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <path>",
			Short: "Print the value at a dot path",
			Long: `Print the value a profile resolves for a dot path, after environment overrides.

Examples:
  uiprobe settings get logger.language --profile ru
  uiprobe settings get timeouts --dir ./testdata`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				file, err := st.loadSettings(flags)
				if err != nil {
					return err
				}
				return printValue(cmd.OutOrStdout(), file, args[0])
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the typed configuration a profile resolves to",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				file, err := st.loadSettings(flags)
				if err != nil {
					return err
				}
				return printConfigurations(cmd.OutOrStdout(), file)
			},
		},
	)

	return cmd
}

func (st *state) loadSettings(flags *SettingsFlags) (settings.File, error) {
	profile, dir := st.cfg.Profile, st.cfg.SettingsDir
	if flags.Profile != "" {
		profile = flags.Profile
	}
	if flags.Dir != "" {
		dir = flags.Dir
	}
	return settings.Load(dir, profile)
}

func printValue(out io.Writer, file settings.File, path string) error {
	v, err := file.Value(path)
	if err != nil {
		return err
	}
	if s, ok := v.(string); ok {
		_, err = fmt.Fprintln(out, s)
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printConfigurations(out io.Writer, file settings.File) error {
	timeouts, err := configurations.NewTimeoutConfiguration(file)
	if err != nil {
		return err
	}
	retry, err := configurations.NewRetryConfiguration(file)
	if err != nil {
		return err
	}
	logger := configurations.NewLoggerConfiguration(file)

	fmt.Fprintf(out, "source:                %s\n", file.Source())
	fmt.Fprintf(out, "language:              %s\n", logger.Language)
	fmt.Fprintf(out, "condition timeout:     %s\n", timeouts.Condition)
	fmt.Fprintf(out, "polling interval:      %s\n", timeouts.PollingInterval)
	fmt.Fprintf(out, "command timeout:       %s\n", timeouts.Command)
	fmt.Fprintf(out, "retries:               %d\n", retry.Number)
	_, err = fmt.Fprintf(out, "retry polling:         %s\n", retry.PollingInterval)
	return err
}
