package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/stocktrack/stockkeeper/internal/client/tui"
	"github.com/stocktrack/stockkeeper/internal/search"
)

// restoreCmd runs the interactive restore wizard for one backup.
var restoreCmd = &cobra.Command{
	Use:   "restore <backup-id>",
	Short: "Restore a backup interactively",
	Long: `Restore a backup through the interactive wizard: choose a mode
(preview, merge, or full replace), then confirm with your admin
password. A full replace takes a safety backup first.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

// searchCmd searches the settings registry.
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search settings fields",
	Long: `Search the settings registry. With a query argument the matches
are printed once; without one an interactive prompt opens.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runRestore(cmd *cobra.Command, args []string) error {
	client := newClient()

	backup, err := client.GetBackup(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	wizard := tui.NewWizard(cmd.Context(), *backup, client)
	if _, err := tea.NewProgram(wizard).Run(); err != nil {
		return err
	}
	if wizard.Cancelled() {
		fmt.Println("Restore cancelled.")
		return nil
	}
	if r := wizard.Result(); r != nil && r.PreRestoreBackupID != "" {
		fmt.Printf("Safety backup taken: %s\n", r.PreRestoreBackupID)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		results := search.Search(args[0], search.Fields(), search.DefaultMaxResults)
		if len(results) == 0 {
			fmt.Println("No settings match.")
			return nil
		}
		for _, g := range search.GroupBySection(results) {
			fmt.Println(g.Section)
			for _, r := range g.Results {
				fmt.Printf("  %s  (%s)\n", r.Title, r.Path)
			}
		}
		return nil
	}

	view := tui.NewSearch(search.Fields())
	if _, err := tea.NewProgram(view).Run(); err != nil {
		return err
	}
	if sel := view.Selected(); sel != nil {
		fmt.Printf("%s: %s\n", sel.Title, sel.Path)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(restoreCmd, searchCmd)
}
