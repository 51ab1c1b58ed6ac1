package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/tiffheif/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui [paths...]",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for tiffheif.

Paths given on the command line are queued at start. Folders are searched
for TIFF images.

Controls:
  a        - Add a file or folder
  d        - Remove the selected file
  X        - Clear the queue
  +/-      - Raise / lower quality
  l        - Toggle lossless HEIF
  o        - Set output directory
  Enter/c  - Convert the queue
  Esc      - Cancel conversion / Back
  ?        - Toggle help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) (err error) {
	// Report panics with a stack trace instead of a garbled terminal.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	paths, err := absPaths(args)
	if err != nil {
		return err
	}

	ports := tui.NewPorts(queueService, batchOrchestrator, settingsService)
	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context()).WithPaths(paths)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
