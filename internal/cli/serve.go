package cli

import (
	"cmp"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/coursegraph/internal/server"
	"github.com/matzehuels/coursegraph/pkg/advisor"
	"github.com/matzehuels/coursegraph/pkg/cache"
	"github.com/matzehuels/coursegraph/pkg/observability/prom"
)

// serveOpts holds the flags for the serve command.
type serveOpts struct {
	addr      string
	catalog   string
	noCache   bool
	noMetrics bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagrams, layouts and hover details over HTTP",
		Long: `Serve diagrams, layouts and hover details over HTTP.

Endpoints:
  GET  /graph.{png,svg,pdf,json,dot,graphviz-svg}?select=MBA505,MBA590
  GET  /layout?select=...
  GET  /hover?x=..&y=..&select=...
  POST /recommend      (when an OpenAI API key is configured)
  GET  /healthz
  GET  /metrics

Rendered artifacts are cached in Redis when [cache] redis_addr or
COURSEGRAPH_REDIS_ADDR is set, otherwise in the local file cache.`,
		Example: `  coursegraph serve
  coursegraph serve --addr :9090 --catalog catalog.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.addr, "addr", "", "listen address (default from config, then "+server.DefaultAddr+")")
	flags.StringVar(&opts.catalog, "catalog", "", "catalog file (.toml, .yaml, .json)")
	flags.BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	flags.BoolVar(&opts.noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts serveOpts) error {
	ctx := cmd.Context()

	cat, err := c.loadCatalog(ctx, opts.catalog)
	if err != nil {
		return err
	}

	cfg := server.Config{
		Addr:    cmp.Or(opts.addr, c.Config.Server.Addr, server.DefaultAddr),
		Catalog: cat,
		Logger:  c.Logger,
	}
	if !opts.noMetrics {
		cfg.Metrics = prom.New()
		cfg.Metrics.Install()
	}

	cc, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	cfg.Cache = cache.Instrument(cc, "artifact")

	if c.Config.OpenAI.APIKey != "" {
		rec, err := c.newRecommender(cache.Instrument(cc, "recommendation"), "")
		if err != nil {
			return err
		}
		cfg.Recommender = advisor.Recommender(rec)
	} else {
		c.Logger.Info("recommendations disabled", "reason", envOpenAIKey+" not set")
	}

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	defer srv.Close()

	printSuccess("Serving %d courses on %s", cat.Len(), srv.Addr())
	return srv.ListenAndServe(ctx)
}
