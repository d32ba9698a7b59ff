package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/districtviz/pkg/chart/numfmt"
	"github.com/matzehuels/districtviz/pkg/district"
	"github.com/matzehuels/districtviz/pkg/errors"
	"github.com/matzehuels/districtviz/pkg/pipeline"
)

var (
	tableHeaderStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tableSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	tableNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	tableDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var (
		data, url, selected, unit, numeral string
		noCache                            bool
	)

	cmd := &cobra.Command{
		Use:   "list [column]",
		Short: "List indicator columns, or the districts ranked by one",
		Example: `  # Columns of a dataset
  districtviz list --data districts.json

  # Ranking with a selected district
  districtviz list poverty_rate --data districts.json --borocd 301`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, err := c.loadDataset(ctx, data, url, noCache)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return printColumns(cmd.OutOrStdout(), ds)
			}

			opts := c.Config.chartDefaults()
			opts.Column, opts.Selected = args[0], selected
			setIf(&opts.Unit, unit)
			setIf(&opts.NumeralFormat, numeral)
			if err := errors.ValidateColumn(opts.Column); err != nil {
				return err
			}
			ranked, err := pipeline.Rank(ds, opts)
			if err != nil {
				return err
			}
			return printRanking(cmd.OutOrStdout(), ranked, opts)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "district dataset file (.json or .csv)")
	cmd.Flags().StringVar(&url, "url", "", "district dataset URL")
	cmd.Flags().StringVar(&selected, "borocd", "", "highlight a district")
	cmd.Flags().StringVar(&unit, "unit", "", "unit appended to values")
	cmd.Flags().StringVar(&numeral, "numeral", "", "number pattern for values")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// loadDataset loads the configured (or flagged) dataset through a runner.
func (c *CLI) loadDataset(ctx context.Context, data, url string, noCache bool) (district.Dataset, error) {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	res, err := openResources(ctx, c.dataConfig(data, url), runner.Cache, false)
	if err != nil {
		return nil, err
	}
	defer res.Close(ctx)

	prog := newProgress(loggerFromContext(ctx))
	ds, err := runner.Load(ctx, pipeline.Options{Source: res.source, SourceName: res.sourceName, Logger: c.Logger})
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Loaded %d districts from %s", len(ds), res.sourceName))
	return ds, nil
}

func printColumns(w io.Writer, ds district.Dataset) error {
	cols := ds.Columns()
	if len(cols) == 0 {
		_, err := fmt.Fprintln(w, StyleDim.Render("no indicator columns"))
		return err
	}
	rows := make([][]string, 0, len(cols))
	for _, col := range cols {
		n := 0
		for _, r := range ds {
			if _, ok := r.Value(col); ok {
				n++
			}
		}
		rows = append(rows, []string{col, fmt.Sprintf("%d/%d", n, len(ds))})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Column", "Values").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 1 {
				return tableDimStyle
			}
			return tableNormalStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// rankingRows formats a ranked dataset as table rows. Missing values are
// shown as a dash.
func rankingRows(ranked district.Dataset, opts pipeline.Options) ([][]string, error) {
	format, err := numfmt.Pattern(opts.NumeralFormat)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(ranked))
	for i, r := range ranked {
		value := "—"
		if v, ok := r.Value(opts.Column); ok {
			value = format(v) + opts.Unit
		}
		marker := ""
		if r.Selected {
			marker = "▸"
		}
		rows = append(rows, []string{marker, strconv.Itoa(i + 1), r.ID, r.DisplayName(), value})
	}
	return rows, nil
}

func printRanking(w io.Writer, ranked district.Dataset, opts pipeline.Options) error {
	rows, err := rankingRows(ranked, opts)
	if err != nil {
		return err
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Rank", "District", "Name", opts.Column).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if row >= 0 && row < len(ranked) && ranked[row].Selected {
				return tableSelectedStyle
			}
			if col == 1 {
				return tableDimStyle
			}
			return tableNormalStyle
		})
	_, err = fmt.Fprintln(w, t.Render())
	return err
}
