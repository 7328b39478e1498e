package cli

import (
	"fmt"

	"github.com/existflow/todoisland/internal/resource"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task by its ID.

Examples:
  todo delete 12
  todo rm 12 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteYes bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cfg, newCLINavigator(cmd.ErrOrStderr()), resource.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	// Look the task up to show its title
	title := fmt.Sprintf("#%d", id)
	if list, err := a.tasks.GetMyTasks(cmd.Context()); err == nil {
		for _, t := range list {
			if t.ID == id {
				title = fmt.Sprintf("\"%s\"", t.Title)
			}
		}
	}

	if cfg.ConfirmDelete && !deleteYes {
		p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		fmt.Fprintf(cmd.OutOrStdout(), "About to delete: %s (ID: %d)\n", title, id)
		if !p.confirm("Are you sure?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	if err := a.tasks.DeleteTask(cmd.Context(), id); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted: %s\n", title)
	return nil
}
