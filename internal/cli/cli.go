// Package cli implements the dotring command-line interface.
package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotring/pkg/buildinfo"
	"github.com/matzehuels/dotring/pkg/config"
	"github.com/matzehuels/dotring/pkg/observability"
	"github.com/matzehuels/dotring/pkg/widget"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the widget, render
// and HTTP hooks report through the logger too.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		h := logHooks{logger: c.Logger}
		observability.SetWidgetHooks(h)
		observability.SetRenderHooks(h)
		observability.SetHTTPHooks(h)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "dotring places colored dots evenly around a circle",
		Long: `dotring is an interactive circular layout widget. Dots dropped or clicked
onto the ring snap to the nearest slot of an even layout, and the ring
re-spaces itself after every change. Render it to files, play with it in
the terminal, or serve it over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/dotring/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.snapCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.playCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Options Helpers
// =============================================================================

// loadConfig reads the file named by --config, or the default file.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// widgetOptions returns the options a widget of variant v starts from. Sizes
// in the configured options belong to the configured variant, so another
// variant only inherits colors.
func widgetOptions(base widget.Options, v widget.Variant) widget.Options {
	if v == "" || v == base.Variant {
		return base
	}
	return widget.Options{
		Variant:      v,
		DefaultColor: base.DefaultColor,
		Palette:      base.Palette,
	}.WithDefaults()
}

// parseVariant parses the --variant flag. Empty keeps the configured variant.
func parseVariant(s string) (widget.Variant, error) {
	if s == "" {
		return "", nil
	}
	return widget.ParseVariant(s)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string, fallback []string) []string {
	if s == "" {
		return fallback
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
