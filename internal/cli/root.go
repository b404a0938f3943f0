// Package cli wires the ectrack command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/ectrack/internal/app"
	"github.com/dori/ectrack/internal/config"
	"github.com/dori/ectrack/internal/ui"
	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "0.1.0"

type rootOptions struct {
	configPath string
	source     string
	theme      string
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ectrack",
		Short: "ectrack - EC challenge progress tracker",
		Long: `ectrack tracks progress through a checklist of challenges loaded from a
CSV file or a published spreadsheet URL. Completion, order and edits are kept
locally; the last fetched source is cached for offline use.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/ectrack/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.source, "source", "", "CSV source path or URL")
	cmd.PersistentFlags().StringVar(&opts.theme, "theme", "", "theme (nord, dracula, gruvbox, catppuccin)")

	cmd.AddCommand(
		newListCommand(opts),
		newResetCommand(opts),
		newExportCommand(opts),
		newStatusCommand(opts),
		newVersionCommand(),
	)

	return cmd
}

// loadConfig reads the config file and applies flag overrides
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.source != "" {
		cfg.Source = o.source
	}
	if o.theme != "" {
		cfg.Theme = o.theme
	}
	return cfg, cfg.Validate()
}

// openApp loads config and opens the application
func (o *rootOptions) openApp() (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg)
}

// runTUI starts the Bubble Tea TUI application
func runTUI(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle interrupt signals for clean shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	application, err := opts.openApp()
	if err != nil {
		return err
	}
	defer application.Close()

	m := ui.NewRootModel(ctx, application)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
