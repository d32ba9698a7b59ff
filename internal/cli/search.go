package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/districtviz/pkg/search"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		data, url, query, column string
		noCache                  bool
		timeout                  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search districts and addresses",
		Long: `Search opens an interactive navigation list over the districts of the dataset
and, when an address source is configured, the addresses matching the typed
terms. Address lookups wait until typing pauses; a newer search always
supersedes an older one.

With --query the search runs once and prints the matching options.`,
		Example: `  districtviz search --data districts.json
  districtviz search --data districts.json --query "bronx park"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cc, err := c.newCache(ctx, noCache)
			if err != nil {
				return err
			}
			defer cc.Close()

			res, err := openResources(ctx, c.dataConfig(data, url), cc, false)
			if err != nil {
				return err
			}
			defer res.Close(ctx)

			ds, err := res.source.Load(ctx)
			if err != nil {
				return err
			}
			var addresses search.AddressSource = search.StaticAddressSource(nil)
			if res.addresses != nil {
				addresses = res.addresses
			}
			nav := search.NewNavigator(search.DistrictOptions(ds), addresses,
				search.WithDebounce(c.Config.Search.Debounce),
				search.WithBaseContext(ctx))
			defer nav.Close()

			if cmd.Flags().Changed("query") {
				qctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()
				return runQuery(qctx, cmd.OutOrStdout(), nav, query)
			}
			return c.runSearchTUI(nav, column)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "district dataset file (.json or .csv)")
	cmd.Flags().StringVar(&url, "url", "", "district dataset URL")
	cmd.Flags().StringVarP(&query, "query", "q", "", "run one search and print the results")
	cmd.Flags().StringVar(&column, "column", "", "column suggested for rendering the chosen district")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "time limit for --query")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runQuery submits terms once and prints the first result that answers them.
func runQuery(ctx context.Context, w io.Writer, nav *search.Navigator, terms string) error {
	feed := newResultFeed(nav)
	defer feed.stop()

	if err := nav.HandleSearch(terms); err != nil {
		return err
	}
	blank := strings.TrimSpace(terms) == ""
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-feed.ch:
			if !blank && r.Terms != terms {
				continue
			}
			if r.Err != nil {
				return r.Err
			}
			return printOptions(w, search.Filter(r.Options, terms))
		}
	}
}

func printOptions(w io.Writer, opts []search.Option) error {
	for _, o := range opts {
		if _, err := fmt.Fprintf(w, "%-8s %-6s %s\n", o.Kind, o.Borocd, o.Name); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) runSearchTUI(nav *search.Navigator, column string) error {
	m := newSearchModel(nav)
	defer m.feed.stop()

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	chosen := final.(searchModel).Chosen
	if chosen == nil {
		return nil
	}
	if chosen.Borocd == "" {
		printWarning("%s is not inside a known district", chosen.Name)
		return nil
	}
	printSuccess("%s %s", StyleHighlight.Render(chosen.Borocd), chosen.Name)
	if column == "" {
		column = c.Config.Chart.Column
	}
	if column == "" {
		column = "<column>"
	}
	printNextStep("Render it", fmt.Sprintf("%s render %s --borocd %s", appName, column, chosen.Borocd))
	return nil
}

// =============================================================================
// Result feed
// =============================================================================

// resultFeed forwards navigator results to the bubbletea loop.
type resultFeed struct {
	ch   chan search.Result
	done chan struct{}
	once sync.Once
}

func newResultFeed(nav *search.Navigator) *resultFeed {
	f := &resultFeed{ch: make(chan search.Result, 16), done: make(chan struct{})}
	nav.Subscribe(func(r search.Result) {
		select {
		case f.ch <- r:
		case <-f.done:
		}
	})
	return f
}

// resultMsg carries one navigator result into Update.
type resultMsg search.Result

func (f *resultFeed) next() tea.Cmd {
	return func() tea.Msg {
		select {
		case r := <-f.ch:
			return resultMsg(r)
		case <-f.done:
			return nil
		}
	}
}

func (f *resultFeed) stop() {
	f.once.Do(func() { close(f.done) })
}

// =============================================================================
// searchModel - Interactive navigation search
// =============================================================================

var (
	searchAddressStyle = lipgloss.NewStyle().Foreground(colorBlue)
	searchErrorStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

// searchModel is the bubbletea model for the navigation list.
type searchModel struct {
	input   textinput.Model
	nav     *search.Navigator
	feed    *resultFeed
	options []search.Option // last published options
	err     error
	Cursor  int
	Height  int
	Chosen  *search.Option
}

func newSearchModel(nav *search.Navigator) searchModel {
	ti := textinput.New()
	ti.Placeholder = "Search districts and addresses..."
	ti.CharLimit = 200
	ti.Width = 50
	ti.Focus()

	return searchModel{
		input:   ti,
		nav:     nav,
		feed:    newResultFeed(nav),
		options: nav.Options(),
		Height:  15,
	}
}

// visible returns the options shown for the current input.
func (m searchModel) visible() []search.Option {
	return search.Filter(m.options, m.input.Value())
}

func (m searchModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.feed.next())
}

func (m searchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.options, m.err = msg.Options, msg.Err
		m.clampCursor()
		return m, m.feed.next()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
			}
			return m, nil
		case tea.KeyDown:
			if m.Cursor < len(m.visible())-1 {
				m.Cursor++
			}
			return m, nil
		case tea.KeyEnter:
			if opts := m.visible(); m.Cursor < len(opts) {
				chosen := opts[m.Cursor]
				m.Chosen = &chosen
				return m, tea.Quit
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		if err := m.nav.HandleSearch(after); err != nil {
			m.err = err
		}
		m.Cursor = 0
	}
	return m, cmd
}

func (m *searchModel) clampCursor() {
	if n := len(m.visible()); m.Cursor >= n {
		m.Cursor = max(n-1, 0)
	}
}

func (m searchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Find a District"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	opts := m.visible()
	offset := 0
	if m.Cursor >= m.Height {
		offset = m.Cursor - m.Height + 1
	}
	end := min(offset+m.Height, len(opts))
	for i := offset; i < end; i++ {
		o := opts[i]
		cursor := "  "
		style := tableNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = tableSelectedStyle
		}
		label := o.Name
		if o.Kind == search.KindAddress {
			label = searchAddressStyle.Render(label)
			if o.Borocd != "" {
				label += " " + tableDimStyle.Render(o.Borocd)
			}
		} else {
			label = style.Render(o.Borocd + "  " + label)
		}
		b.WriteString(cursor + label + "\n")
	}
	if len(opts) == 0 {
		b.WriteString(tableDimStyle.Render("  no matches") + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + searchErrorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(tableDimStyle.Render(fmt.Sprintf("↑/↓ navigate  ⏎ select  esc quit  [%d]", len(opts))))
	return b.String()
}
