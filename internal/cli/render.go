package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotring/pkg/config"
	"github.com/matzehuels/dotring/pkg/errors"
	"github.com/matzehuels/dotring/pkg/render/sink"
	"github.com/matzehuels/dotring/pkg/script"
	"github.com/matzehuels/dotring/pkg/widget"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output base path
	formats []string // output formats: svg, png, json, html
	dots    int      // dots to add when no script is given
	script  string   // scenario file replayed against the widget
	variant string   // widget variant override
	scale   float64  // PNG scale factor
}

// renderCommand creates the render command for writing widget drawings.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a widget to SVG, PNG, JSON or HTML",
		Long: `Render builds a widget, either with --dots evenly spaced dots or by
replaying a TOML scenario script, and writes it in every requested format.
Files are named after the output base path with the format as extension.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.formats = parseFormats(formatsStr, cfg.Render.Formats)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if opts.output == "" {
				opts.output = cfg.Render.Output
			}
			if !cmd.Flags().Changed("scale") {
				opts.scale = cfg.Render.Scale
			}
			if opts.dots < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--dots must not be negative")
			}
			if opts.script != "" && opts.dots > 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--dots and --script are mutually exclusive")
			}

			paths, err := runRender(cmd.Context(), cfg, &opts)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printSuccess(w, "Rendered %d file(s)", len(paths))
			for _, p := range paths {
				printFile(w, p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default from config: dotring)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json, html (comma-separated)")
	cmd.Flags().IntVarP(&opts.dots, "dots", "n", 0, "number of evenly spaced dots")
	cmd.Flags().StringVarP(&opts.script, "script", "s", "", "TOML scenario to replay")
	cmd.Flags().StringVar(&opts.variant, "variant", "", "widget variant: managed, toggle (default from config)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2, "PNG scale factor")

	return cmd
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	if len(formats) == 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "no output format given")
	}
	for _, f := range formats {
		if !config.ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'svg', 'png', 'json', or 'html')", f)
		}
	}
	return nil
}

// basePath strips a known format extension from output, so "ring.svg" and
// "ring" both write ring.svg, ring.png and so on.
func basePath(output string) string {
	ext := filepath.Ext(output)
	if config.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// buildWidget creates the widget described by cfg and opts and brings it to
// its final state.
func buildWidget(ctx context.Context, cfg config.Config, opts *renderOpts) (*widget.Controller, error) {
	logger := loggerFromContext(ctx)

	v, err := parseVariant(opts.variant)
	if err != nil {
		return nil, err
	}
	wopts := widgetOptions(cfg.Widget, v)

	var steps []script.Step
	if opts.script != "" {
		sc, err := script.Load(opts.script)
		if err != nil {
			return nil, err
		}
		if v == "" {
			wopts = widgetOptions(wopts, sc.Widget.Variant)
		}
		wopts = wopts.Merge(sc.Widget)
		steps = sc.Steps
		logger.Debugf("Loaded %s: %d steps", opts.script, len(steps))
	}

	ctrl, err := widget.New(wopts)
	if err != nil {
		return nil, err
	}
	ctrl.SetContext(ctx)

	if err := script.Run(ctrl, steps); err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "replay %s", opts.script)
	}
	for range opts.dots {
		ctrl.Add("")
	}
	return ctrl, nil
}

// runRender builds the widget and writes one file per format. It returns the
// written paths.
func runRender(ctx context.Context, cfg config.Config, opts *renderOpts) ([]string, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	ctrl, err := buildWidget(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	logger.Infof("Built %s widget with %d dots", ctrl.Variant(), ctrl.Len())

	base := basePath(opts.output)
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
		}
	}

	paths := make([]string, 0, len(opts.formats))
	for _, format := range opts.formats {
		data, err := renderFormat(ctx, ctrl, format, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
		path := base + "." + format
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		logger.Debugf("Generated %s: %d bytes", path, len(data))
		paths = append(paths, path)
	}
	prog.done(fmt.Sprintf("Rendered %d file(s)", len(paths)))
	return paths, nil
}

// renderFormat draws ctrl in one output format.
func renderFormat(ctx context.Context, ctrl *widget.Controller, format string, opts *renderOpts) ([]byte, error) {
	switch format {
	case "svg":
		return sink.RenderSVG(ctrl, sink.WithSVGContext(ctx), sink.WithID(appName)), nil
	case "png":
		return sink.RenderPNG(ctrl, sink.WithPNGContext(ctx), sink.WithScale(opts.scale))
	case "json":
		return sink.RenderJSON(ctrl, sink.WithJSONContext(ctx), sink.WithJSONID(appName))
	case "html":
		return sink.RenderMarkup(ctrl,
			sink.WithMarkupContext(ctx),
			sink.WithMarkupID(appName),
			sink.WithPage(appName),
		)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
}
