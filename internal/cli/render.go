package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/districtviz/pkg/pipeline"
)

// renderFlags holds the flags of the render command.
type renderFlags struct {
	data     string
	url      string
	output   string
	formats  string
	noCache  bool
	refresh  bool
	selected string
	hover    string
	overlay  string
	moe      string
	unit     string
	numeral  string
	width    float64
	height   float64
	title    string
	page     bool
	scale    float64
	caption  bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render [column]",
		Short: "Render a ranking chart for one indicator column",
		Long: `Render ranks the districts by an indicator column and draws the ranking as a bar chart.

The selected district (--borocd) is emphasized and, with --moe, margin of
error bands are drawn around every bar. --hover draws the chart in the
hovered state of one district, tooltip included.

Output files are named <column>.<format> unless --output is given.`,
		Example: `  # Draw the poverty ranking with Brooklyn 1 selected
  districtviz render poverty_rate --data districts.json --borocd 301

  # Several formats with margins of error
  districtviz render poverty_rate --moe poverty_rate_moe -f svg,png,html -o out/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			column := c.Config.Chart.Column
			if len(args) == 1 {
				column = args[0]
			}
			return c.runRender(cmd.Context(), column, f)
		},
	}

	cmd.Flags().StringVar(&f.data, "data", "", "district dataset file (.json or .csv)")
	cmd.Flags().StringVar(&f.url, "url", "", "district dataset URL")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file or directory")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output formats: svg, html, json, png (comma-separated)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "reload the dataset and redraw, ignoring cached results")
	cmd.Flags().StringVar(&f.selected, "borocd", "", "selected district")
	cmd.Flags().StringVar(&f.hover, "hover", "", "draw the hovered state of a district")
	cmd.Flags().StringVar(&f.overlay, "overlay", "", "column marking districts drawn in the overlay color")
	cmd.Flags().StringVar(&f.moe, "moe", "", "margin of error column")
	cmd.Flags().StringVar(&f.unit, "unit", "", "unit appended to values")
	cmd.Flags().StringVar(&f.numeral, "numeral", "", "number pattern for values (e.g. 0,0.0)")
	cmd.Flags().Float64Var(&f.width, "width", 0, "chart width in pixels")
	cmd.Flags().Float64Var(&f.height, "height", 0, "chart height in pixels")
	cmd.Flags().StringVar(&f.title, "title", "", "chart title")
	cmd.Flags().BoolVar(&f.page, "page", false, "write HTML as a standalone page")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "PNG pixel density")
	cmd.Flags().BoolVar(&f.caption, "caption", false, "print the tooltip under PNG output")

	return cmd
}

// renderOptions merges the flags over the configured chart defaults.
func (c *CLI) renderOptions(column string, f renderFlags) pipeline.Options {
	opts := c.Config.chartDefaults()
	opts.Column = column
	opts.Formats = parseFormats(f.formats)
	opts.Refresh = f.refresh
	opts.Selected = f.selected
	opts.Hover = f.hover
	opts.Title = f.title
	opts.Page = f.page
	opts.Caption = f.caption
	opts.Scale = f.scale
	opts.Logger = c.Logger
	setIf(&opts.OverlayColumn, f.overlay)
	setIf(&opts.MoEColumn, f.moe)
	setIf(&opts.Unit, f.unit)
	setIf(&opts.NumeralFormat, f.numeral)
	if f.width > 0 {
		opts.Width = f.width
	}
	if f.height > 0 {
		opts.Height = f.height
	}
	return opts
}

// dataConfig applies --data and --url over the configured data section.
func (c *CLI) dataConfig(path, url string) Config {
	cfg := c.Config
	switch {
	case path != "":
		cfg.Data = DataConfig{Path: path}
	case url != "":
		cfg.Data = DataConfig{URL: url}
	}
	return cfg
}

func (c *CLI) runRender(ctx context.Context, column string, f renderFlags) error {
	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := openResources(ctx, c.dataConfig(f.data, f.url), runner.Cache, f.refresh)
	if err != nil {
		return err
	}
	defer res.Close(ctx)

	opts := c.renderOptions(column, f)
	opts.Source, opts.SourceName = res.source, res.sourceName

	sp := newSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %s...", column))
	sp.Start()
	result, err := runner.Execute(ctx, opts)
	sp.Stop()
	if err != nil {
		if sp.Cancelled() {
			printError("Render of %s cancelled", column)
		}
		return err
	}

	paths, err := writeArtifacts(opts.Column, f.output, opts.Formats, result.Artifacts)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", StyleHighlight.Render(column))
	printStats(result.Stats.Rows, result.Stats.Elements, result.CacheInfo.RenderHit)
	if result.Rank > 0 {
		printKeyValue("Rank", StyleNumber.Render(fmt.Sprintf("%d of %d", result.Rank, result.Stats.Rows)))
	}
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// writeArtifacts writes one file per format. A single format with an output
// path that is not a directory is written to that path.
func writeArtifacts(column, output string, formats []string, artifacts map[string][]byte) ([]string, error) {
	dir, single := output, ""
	if output != "" && len(formats) == 1 && filepath.Ext(output) != "" {
		dir, single = filepath.Dir(output), output
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := single
		if path == "" {
			path = filepath.Join(dir, column+"."+format)
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
