package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/districtviz/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr, data, url string
		noCache         bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rankings, charts and search over HTTP",
		Long: `Serve starts the HTTP API:

  GET /healthz                   build information
  GET /districts                 dataset columns and districts
  GET /indicators/{column}       ranking for one column (?borocd=)
  GET /charts/{column}.{format}  chart as svg, html, json or png
  GET /search?q=                 districts and addresses matching q`,
		Example: `  districtviz serve --data districts.json --addr :9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := openResources(ctx, c.dataConfig(data, url), runner.Cache, false)
			if err != nil {
				return err
			}
			defer res.Close(ctx)

			if addr == "" {
				addr = c.Config.Server.Addr
			}
			srv, err := server.New(server.Config{
				Addr:           addr,
				Source:         res.source,
				SourceName:     res.sourceName,
				Runner:         runner,
				Addresses:      res.addresses,
				Chart:          c.Config.chartDefaults(),
				RequestTimeout: c.Config.Server.RequestTimeout,
				Logger:         loggerFromContext(ctx),
			})
			if err != nil {
				return err
			}

			printSuccess("Serving %s on %s", StyleHighlight.Render(res.sourceName), StyleLink.Render(srv.Addr()))
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&data, "data", "", "district dataset file (.json or .csv)")
	cmd.Flags().StringVar(&url, "url", "", "district dataset URL")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
