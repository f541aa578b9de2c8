package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/wardboard/internal/api"
	"github.com/rshade/wardboard/internal/logging"
	"github.com/rshade/wardboard/internal/pagination"
	"github.com/rshade/wardboard/internal/store"
	"github.com/rshade/wardboard/internal/tui"
)

type listParams struct {
	page     int
	pageSize int
	all      bool
	output   string
	sort     string
	search   string
}

// listJSONOutput is the --output json document of the list command.
type listJSONOutput struct {
	Collection string                    `json:"collection"`
	Items      []api.Entity              `json:"items"`
	Pagination pagination.PaginationMeta `json:"pagination"`
}

// NewListCmd creates the list command, which prints one page of a collection.
func NewListCmd() *cobra.Command {
	var p listParams

	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "Print one page of a collection",
		Long: `Fetches a collection from the backend and prints one page of it.

Pages are computed client-side, the same way the dashboard pages its tables.
A page past the end prints an empty page.`,
		Example: `  # First page of patients
  wardboard list patients

  # Third page of appointments, 20 per page
  wardboard list appointments --page 3 --page-size 20

  # Every unpaid bill as NDJSON
  wardboard list bills --all --search unpaid --output ndjson

  # Doctors by fee, highest first
  wardboard list doctors --sort fee:desc`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCollections,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := pagination.PaginationParams{Page: p.page, PageSize: p.pageSize, All: p.all}
			if cmd.Flags().Changed("page") {
				params.MarkPageSet()
			}
			return executeList(cmd, args[0], params, p)
		},
	}

	cmd.Flags().IntVar(&p.page, "page", pagination.DefaultPage, "page number (1-based)")
	cmd.Flags().IntVar(&p.pageSize, "page-size", pagination.DefaultPageSize, "rows per page")
	cmd.Flags().BoolVar(&p.all, "all", false, "print every row instead of one page")
	cmd.Flags().StringVarP(&p.output, "output", "o", "", "output format: table, json, ndjson")
	cmd.Flags().StringVar(&p.sort, "sort", "", "sort by column, e.g. name or fee:desc")
	cmd.Flags().StringVar(&p.search, "search", "", "only rows matching this text")

	return cmd
}

func executeList(cmd *cobra.Command, name string, params pagination.PaginationParams, p listParams) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid pagination parameters: %w", err)
	}
	format, err := resolveOutputFormat(p.output)
	if err != nil {
		return err
	}
	coll, err := lookupCollection(name)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	s, err := newStore(ctx, client, nil)
	if err != nil {
		return err
	}
	if err = s.Refresh(ctx, coll.Key); err != nil {
		return err
	}

	items := store.Entities(s, coll.Key, false)
	if p.search != "" {
		items = tui.Filter(items, p.search)
	}
	if p.sort != "" {
		if items, err = sortEntities(coll.Key, items, p.sort); err != nil {
			return err
		}
	}

	total := len(items)
	page := pagination.Apply(params, items)
	if page == nil {
		page = []api.Entity{}
	}
	meta := pagination.NewPaginationMeta(params, total)

	log.Debug().Ctx(ctx).
		Str("collection", coll.Key).
		Int("total", total).
		Int("returned", len(page)).
		Int("current_page", meta.CurrentPage).
		Msg("listing collection")

	out := cmd.OutOrStdout()
	switch format {
	case OutputJSON:
		return writeJSON(out, listJSONOutput{Collection: coll.Path, Items: page, Pagination: meta})
	case OutputNDJSON:
		return writeNDJSON(out, page)
	default:
		rows := make([][]string, len(page))
		for i, e := range page {
			rows[i] = tui.Cells(e)
		}
		if err = writeTable(out, tui.ColumnTitles(coll.Key), rows); err != nil {
			return err
		}
		if total == 0 {
			fmt.Fprintln(out, "\nNo records")
			return nil
		}
		fmt.Fprintf(out, "\nPage %d of %d · %d records\n", meta.CurrentPage, meta.TotalPages, meta.TotalItems)
		return nil
	}
}

// sortEntities sorts by the displayed column named in expr.
func sortEntities(key string, items []api.Entity, expr string) ([]api.Entity, error) {
	field, order, err := pagination.ParseSortExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid sort expression: %w", err)
	}

	titles := tui.ColumnTitles(key)
	col := -1
	for i, t := range titles {
		if strings.EqualFold(t, field) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("invalid sort field: %q (valid fields: %s)", field, strings.ToLower(strings.Join(titles, ", ")))
	}

	return pagination.SortBy(items, func(e api.Entity) string { return tui.Cells(e)[col] }, order), nil
}
