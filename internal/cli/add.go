package cli

import (
	"fmt"
	"strings"

	"github.com/existflow/todoisland/internal/resource"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a new task with the given title.

Examples:
  todo add "Buy milk"
  todo add Call mom tonight`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg, newCLINavigator(cmd.ErrOrStderr()), resource.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.tasks.CreateTask(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Added: \"%s\" (ID: %d)\n", task.Title, task.ID)
	return nil
}
