package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/testforge/uicore/internal/application"
	"github.com/testforge/uicore/internal/elements"
	"github.com/testforge/uicore/internal/locator"
	"github.com/testforge/uicore/internal/observability"
	"github.com/testforge/uicore/internal/services"
)

var (
	green  = color.New(color.FgGreen, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow)
	dim    = color.New(color.Faint)
)

// FindFlags holds the flags for the find command
type FindFlags struct {
	URL        string
	By         string
	Kind       string
	State      string
	Count      string
	Driver     string
	Profile    string
	Timeout    time.Duration
	Screenshot bool
}

func newFindCmd(st *state) *cobra.Command {
	flags := &FindFlags{
		By:   string(locator.StrategyCSS),
		Kind: string(elements.KindLabel),
	}

	cmd := &cobra.Command{
		Use:   "find <selector>",
		Short: "List the elements a locator resolves to",
		Long: `Open a page and list every element the locator resolves to, with its text.

Examples:
  # Visible list items
  uiprobe find "ul.todo-list li" --url https://demo.playwright.dev/todomvc

  # Fail unless the error banner is gone
  uiprobe find "#error" --by css --count zero --url http://localhost:8080

  # Hidden inputs too, through rod
  uiprobe find "//input" --by xpath --state exists --driver rod --url http://localhost:8080`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd.Context(), cmd.OutOrStdout(), st, flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.URL, "url", "", "Page to open before probing")
	cmd.Flags().StringVar(&flags.By, "by", flags.By, "Locator strategy (css, xpath, id, name, text)")
	cmd.Flags().StringVar(&flags.Kind, "kind", flags.Kind, "Element kind to build handles of")
	cmd.Flags().StringVar(&flags.State, "state", "displayed", "Element state (displayed, exists)")
	cmd.Flags().StringVar(&flags.Count, "count", "any", "Expected count (zero, more-than-zero, any)")
	cmd.Flags().StringVar(&flags.Driver, "driver", "", "Browser backend (playwright, rod); overrides BROWSER_DRIVER")
	cmd.Flags().StringVar(&flags.Profile, "profile", "", "Settings profile; overrides PROFILE")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Lookup timeout; defaults to the profile's condition timeout")
	cmd.Flags().BoolVar(&flags.Screenshot, "screenshot", false, "Store a screenshot when the lookup fails")

	return cmd
}

func runFind(ctx context.Context, out io.Writer, st *state, flags *FindFlags, selector string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	loc, err := locator.Parse(flags.By, selector)
	if err != nil {
		return err
	}
	elState, err := elements.ParseState(flags.State)
	if err != nil {
		return err
	}
	count, err := elements.ParseCount(flags.Count)
	if err != nil {
		return err
	}

	cfg := *st.cfg
	if flags.Driver != "" {
		cfg.Browser.Driver = flags.Driver
	}
	if flags.Profile != "" {
		cfg.Profile = flags.Profile
	}
	if flags.URL != "" {
		cfg.Browser.StartURL = flags.URL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc := services.New(st.browser(cfg.Browser), services.ModuleFromConfig(&cfg, st.logger))
	defer func() {
		if err := svc.Close(); err != nil {
			st.logger.Warn("Failed to close browser", zap.Error(err))
		}
	}()

	inj, err := svc.ServiceProvider()
	if err != nil {
		return err
	}
	if cfg.Metrics.Addr != "" {
		stop := serveMetrics(cfg.Metrics.Addr, inj.Metrics(), st.logger)
		defer stop()
	}

	factory, err := svc.ElementFactory(ctx)
	if err != nil {
		return err
	}

	opts := []elements.Option{
		elements.WithName(selector),
		elements.WithState(elState),
		elements.WithCount(count),
	}
	if flags.Timeout > 0 {
		opts = append(opts, elements.WithLookupTimeout(flags.Timeout))
	}

	found, err := factory.FindElementsOf(ctx, elements.Kind(flags.Kind), loc, opts...)
	if err != nil {
		red.Fprintf(out, "✗ %s\n", err)
		if flags.Screenshot {
			saveFailureScreenshot(ctx, out, svc)
		}
		return err
	}

	green.Fprintf(out, "✓ %d element(s) for %s\n", len(found), loc)
	for _, el := range found {
		text, err := el.Text(ctx)
		if err != nil {
			yellow.Fprintf(out, "  %s: %v\n", el.Name(), err)
			continue
		}
		fmt.Fprintf(out, "  %s %s\n", dim.Sprint(el.Locator()), text)
	}
	return nil
}

func saveFailureScreenshot(ctx context.Context, out io.Writer, svc *services.Services[*application.Browser]) {
	uri, err := svc.SaveScreenshot(ctx, "uiprobe-find")
	switch {
	case errors.Is(err, services.ErrNoArtifactStore):
		yellow.Fprintln(out, "  screenshot skipped: artifacts are disabled")
	case err != nil:
		yellow.Fprintf(out, "  screenshot failed: %v\n", err)
	default:
		fmt.Fprintf(out, "  screenshot: %s\n", uri)
	}
}

// serveMetrics exposes m on addr until the returned func is called
func serveMetrics(addr string, m *observability.Metrics, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
