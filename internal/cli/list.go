package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/existflow/todoisland/internal/dashboard"
	"github.com/existflow/todoisland/internal/model"
	"github.com/existflow/todoisland/internal/resource"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your tasks",
	Long: `List your tasks, pending ones first.

Examples:
  todo list
  todo list --all`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listAll bool

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Include completed tasks")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg, newCLINavigator(cmd.ErrOrStderr()), resource.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.tasks.GetMyTasks(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No tasks found. Add one with: todo add \"Your task\"")
		return nil
	}

	printTasks(out, dashboard.Order(list), listAll)
	return nil
}

func printTasks(w io.Writer, ordered []model.Task, includeDone bool) {
	pending, done := 0, 0
	for _, t := range ordered {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}

	fmt.Fprintf(w, "\n📋 My tasks (%d pending, %d done)\n", pending, done)
	fmt.Fprintln(w, strings.Repeat("─", 60))

	for _, t := range ordered {
		if t.Completed && !includeDone {
			continue
		}
		printTask(w, t)
	}
	fmt.Fprintln(w)
}

func printTask(w io.Writer, t model.Task) {
	icon := "[ ]"
	if t.Completed {
		icon = "[x]"
	}

	// Truncate title if too long
	title := t.Title
	if r := []rune(title); len(r) > 48 {
		title = string(r[:45]) + "..."
	}

	fmt.Fprintf(w, "  %s  %-6d  %s\n", icon, t.ID, title)
}
