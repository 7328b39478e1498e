package cli

import (
	"fmt"
	"strconv"

	"github.com/existflow/todoisland/internal/apperr"
	"github.com/existflow/todoisland/internal/resource"
	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:     "toggle [task-id]",
	Aliases: []string{"done"},
	Short:   "Mark a task done, or pending again",
	Long: `Flip the completion state of a task by its ID.

Examples:
  todo toggle 12
  todo done 12`,
	Args: cobra.ExactArgs(1),
	RunE: runToggle,
}

func runToggle(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cfg, newCLINavigator(cmd.ErrOrStderr()), resource.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.tasks.Toggle(cmd.Context(), id)
	if err != nil {
		return err
	}

	if task.Completed {
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Completed: \"%s\"\n", task.Title)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "↩️  Pending again: \"%s\"\n", task.Title)
	}
	return nil
}

func parseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid task id %q", s)
	}
	return id, nil
}
