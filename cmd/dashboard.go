package cmd

import (
	"github.com/Mohsinsiddi/w3dex/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"ui"},
	Short:   "Open the live exchange dashboard",
	Long:    `Open a full-screen view that fills in as each load step completes. Press q to quit.`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, err := newShell()
		if err != nil {
			return err
		}
		p := ui.NewDashboard(cmd.Context(), shell, tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}
