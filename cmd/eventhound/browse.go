package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"eventhound/internal/authority"
	"eventhound/internal/events"
	"eventhound/internal/ingest"
	"eventhound/internal/logging"
	"eventhound/internal/models"
	"eventhound/internal/pipeline"
	"eventhound/internal/session"
	"eventhound/internal/timeutil"
)

type browseFlags struct {
	source   string
	search   string
	city     string
	category string
	free     bool
	date     string
	sortBy   string
	order    string
	page     int
	size     int
}

func newBrowseCmd() *cobra.Command {
	flags := browseFlags{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List upcoming events through the filter pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runBrowse(cmd, cfg, flags)
		},
	}

	cmd.Flags().StringVar(&flags.source, "source", "all", "event sources: all, local, or external")
	cmd.Flags().StringVar(&flags.search, "search", "", "text search over title, address, and city")
	cmd.Flags().StringVar(&flags.city, "city", "", "exact city filter")
	cmd.Flags().StringVar(&flags.category, "category", "", "exact category filter")
	cmd.Flags().BoolVar(&flags.free, "free", false, "only free events")
	cmd.Flags().StringVar(&flags.date, "date", "", "exact day filter (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.sortBy, "sort", "date", "sort field: title, date, or location")
	cmd.Flags().StringVar(&flags.order, "order", "asc", "sort order: asc or desc")
	cmd.Flags().IntVar(&flags.page, "page", 1, "page number")
	cmd.Flags().IntVar(&flags.size, "size", models.DefaultPageSize, "events per page")
	return cmd
}

func runBrowse(cmd *cobra.Command, cfg Config, flags browseFlags) error {
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cmd.ErrOrStderr()})

	sess := session.Anonymous()
	if cfg.AuthToken != "" {
		s, err := session.FromToken(cfg.AuthToken)
		if err != nil {
			log.Warn().Err(err).Msg("ignoring unusable auth token")
		} else {
			sess = s
		}
	}
	client := authority.New(cfg.AuthorityURL, nil, log)
	svc := events.New(client, sess, log)
	refresher := ingest.NewRefresher(client, nil, cfg.CacheTTL, log)

	var local, external []models.Event
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		local, err = svc.List(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		external, err = refresher.Events(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	state, err := filterState(flags)
	if err != nil {
		return err
	}

	result := pipeline.Apply(local, external, state, time.Now())
	printResult(cmd, result)
	return nil
}

func filterState(flags browseFlags) (models.FilterState, error) {
	state := models.NewFilterState()
	state.SetSource(models.SourceFilter(flags.source))
	state.SetSearchQuery(flags.search)
	state.SetCity(flags.city)
	state.SetCategory(flags.category)
	if flags.free {
		state.SetPrice("free")
	}
	if flags.date != "" {
		day := timeutil.Parse(flags.date)
		if day.IsZero() {
			return state, fmt.Errorf("unrecognized date %q, want YYYY-MM-DD", flags.date)
		}
		state.SetDate(day)
	}
	state.SetSort(models.SortField(flags.sortBy), models.SortOrder(flags.order))
	state.SetPage(flags.page)
	state.ItemsPerPage = flags.size
	return state, nil
}

func printResult(cmd *cobra.Command, result pipeline.Result) {
	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTITLE\tCITY\tCATEGORY\tPRICE\tSOURCE")
	for _, ev := range result.Events {
		source := "local"
		if ev.IsExternal {
			source = "external"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			ev.StartDate.Format("2006-01-02"),
			ev.Title,
			ev.Location.City,
			ev.Category,
			ev.Price.String(),
			source,
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\npage %d of %d (%d events)\n", result.Page, result.TotalPages, result.TotalItems)
	if len(result.Cities) > 0 {
		fmt.Fprintf(out, "cities: %s\n", strings.Join(result.Cities, ", "))
	}
}
