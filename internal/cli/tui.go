package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/todoisland/internal/dashboard"
	"github.com/existflow/todoisland/internal/logger"
	"github.com/existflow/todoisland/internal/session"
	"github.com/existflow/todoisland/internal/tui"
	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, args []string) error {
	bridge := tui.NewBridge()
	a, err := openApp(cfg, bridge, bridge)
	if err != nil {
		return err
	}
	defer a.Close()

	provider := session.NewProvider(a.store)
	defer provider.Close()
	board := dashboard.New(a.tasks, dashboard.WithNotifier(bridge))

	logger.Info("Launching TUI")
	m := tui.NewModel(provider, board, bridge, tui.Options{ConfirmDelete: cfg.ConfirmDelete})
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", logger.F("error", err))
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	board.Unmount()
	logger.Info("TUI exited normally")
	return nil
}
