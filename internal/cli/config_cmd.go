package cli

import (
	"fmt"

	"github.com/existflow/todoisland/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Show the current settings, or change them.

Examples:
  todo config
  todo config --api-url https://todo.example.com
  todo config --store sqlite`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

var configStore string

func init() {
	configCmd.Flags().StringVar(&configStore, "store", "", "Credential store: file or sqlite")
}

func runConfig(cmd *cobra.Command, args []string) error {
	changed := false
	if cmd.Flags().Changed("api-url") {
		changed = true
	}
	if cmd.Flags().Changed("store") {
		cfg.CredentialStore = configStore
		changed = true
	}

	if changed {
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Settings saved.")
	}

	path, _ := config.Path()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config file:      %s\n", path)
	fmt.Fprintf(out, "API URL:          %s\n", cfg.APIURL)
	fmt.Fprintf(out, "Request timeout:  %s\n", cfg.RequestTimeout)
	fmt.Fprintf(out, "Credential store: %s\n", cfg.CredentialStore)
	fmt.Fprintf(out, "Confirm delete:   %t\n", cfg.ConfirmDelete)
	fmt.Fprintf(out, "Log level:        %s\n", cfg.LogLevel)
	fmt.Fprintf(out, "Log file:         %s\n", cfg.LogFile)
	return nil
}
