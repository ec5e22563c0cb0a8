package cli

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/coursegraph/pkg/advisor"
	"github.com/matzehuels/coursegraph/pkg/advisor/openai"
	"github.com/matzehuels/coursegraph/pkg/cache"
	"github.com/matzehuels/coursegraph/pkg/catalog"
	"github.com/matzehuels/coursegraph/pkg/pipeline"
)

// adviseOpts holds the flags for the advise command.
type adviseOpts struct {
	catalog string
	model   string
	plain   bool
	noCache bool
	output  string
	formats string
}

// adviseCommand creates the advise command.
func (c *CLI) adviseCommand() *cobra.Command {
	var opts adviseOpts

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Run the course advising interview",
		Long: `Run the course advising interview.

The advisor asks five questions about your goals. After the last answer the
transcript is sent to the chat-completion service configured in [openai]
(or OPENAI_API_KEY), and the course codes in its reply become the selection.
Further messages are follow-up questions.

When the interview ends the recommended courses are printed as cards. With
--output the diagram is rendered with them selected.`,
		Example: `  coursegraph advise
  coursegraph advise -o plan.svg
  coursegraph advise --plain < answers.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cc, err := c.newCache(ctx, opts.noCache)
			if err != nil {
				return fmt.Errorf("initialize cache: %w", err)
			}
			defer cc.Close()

			rec, err := c.newRecommender(cache.Instrument(cc, "recommendation"), opts.model)
			if err != nil {
				return err
			}
			return c.runAdvise(ctx, rec, cmd.InOrStdin(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.catalog, "catalog", "", "catalog file (.toml, .yaml, .json)")
	flags.StringVar(&opts.model, "model", "", "chat model (default "+openai.DefaultModel+")")
	flags.BoolVar(&opts.plain, "plain", false, "read answers line by line from stdin instead of the interactive UI")
	flags.BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	flags.StringVarP(&opts.output, "output", "o", "", "render the diagram with the recommended courses selected")
	flags.StringVarP(&opts.formats, "format", "f", "", "output format(s) for --output: png, svg, pdf, json, dot, graphviz-svg")

	return cmd
}

// newRecommender builds the chat-completion client from the config.
func (c *CLI) newRecommender(cc cache.Cache, model string) (*openai.Client, error) {
	oc := c.Config.OpenAI
	cfg := openai.Config{
		APIKey:      oc.APIKey,
		BaseURL:     oc.BaseURL,
		Model:       cmp.Or(model, oc.Model),
		Temperature: oc.Temperature,
		MaxTokens:   oc.MaxTokens,
		Cache:       cc,
		Logger:      c.Logger,
	}
	if t := oc.Timeout(); t > 0 {
		cfg.HTTPClient = &http.Client{Timeout: t}
	}
	return openai.New(cfg)
}

// runAdvise runs one interview against rec and reports the outcome.
func (c *CLI) runAdvise(ctx context.Context, rec advisor.Recommender, in io.Reader, opts adviseOpts) error {
	session := advisor.NewSession(rec,
		advisor.WithLogger(c.Logger),
		advisor.WithSelectionHandler(func(ids []string) {
			c.Logger.Debug("selection updated", "courses", ids)
		}),
	)

	var err error
	if opts.plain {
		err = runPlainInterview(ctx, session, in)
	} else {
		_, err = tea.NewProgram(NewInterviewModel(ctx, session), tea.WithContext(ctx)).Run()
	}
	if err != nil {
		return fmt.Errorf("interview: %w", err)
	}

	ids := session.Selection()
	if len(ids) == 0 {
		printInfo("No courses recommended")
		return nil
	}

	printNewline()
	if opts.output != "" {
		return c.runRender(ctx, renderOpts{
			output:  opts.output,
			noCache: opts.noCache,
			pipeline: pipeline.Options{
				CatalogPath: c.catalogPath(opts.catalog),
				Selection:   ids,
				Formats:     formatsOrConfig(opts.formats, c.Config.Render.Formats),
			},
		})
	}

	cat, err := c.loadCatalog(ctx, opts.catalog)
	if err != nil {
		return err
	}
	sel, unknown := pipeline.ResolveSelection(cat, ids)
	printSuccess("Recommended %d course(s)", sel.Len())
	var courses []catalog.Course
	for _, crs := range cat.Courses() {
		if sel.Has(crs.ID) {
			courses = append(courses, crs)
		}
	}
	printCourseCards(courses)
	for _, id := range unknown {
		printWarning("%s is not in the catalog", id)
	}
	printNextStep("Draw the diagram", fmt.Sprintf("%s render -s %s", appName, strings.Join(sel.IDs(), ",")))
	return nil
}

// runPlainInterview prints each advisor turn and reads one answer per line
// until every question is answered and the recommendation has arrived.
func runPlainInterview(ctx context.Context, session *advisor.Session, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(uiOut, StyleDim.Render(session.ProgressLabel()))
	fmt.Fprintln(uiOut, session.Question())

	for !session.Complete() {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return fmt.Errorf("input ended after %s", session.ProgressLabel())
		}
		reply, err := session.Submit(ctx, scanner.Text())
		if err != nil {
			printWarning("%v", err)
			continue
		}
		if reply.Kind == advisor.ReplyQuestion {
			fmt.Fprintln(uiOut, StyleDim.Render(session.ProgressLabel()))
		}
		fmt.Fprintln(uiOut, reply.Text)
	}
	return nil
}

// formatsOrConfig parses the --format flag, falling back to the configured
// render formats.
func formatsOrConfig(flag string, configured []string) []string {
	if flag == "" && len(configured) > 0 {
		return configured
	}
	return parseFormats(flag)
}
