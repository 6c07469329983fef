package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/nekohub/internal/viewmodel"
)

func newListCmd() *cobra.Command {
	var (
		filter   string
		sortBy   string
		order    string
		preset   string
		search   string
		pageSize int
		pages    int
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		Long: `List posts one page at a time.

Sort presets: ` + presetNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := viewmodel.ParseFilter(filter)
			if err != nil {
				return err
			}
			if preset != "" {
				p, ok := findPreset(preset)
				if !ok {
					return fmt.Errorf("unknown sort preset %q (want one of: %s)", preset, presetNames())
				}
				sortBy, order = p.By, p.Order
			}
			if pageSize <= 0 {
				pageSize = cfg.PageSize
			}

			ctx := cmd.Context()
			vm := viewmodel.NewListViewModel(client, newTerminal(cmd), logger, pageSize)

			// Option setters reload only when the value differs from the
			// defaults; fall back to a plain reload otherwise.
			vm.SetSearchText(search)
			loaded := vm.SetFilter(ctx, f)
			loaded = vm.SetSort(ctx, sortBy, order) || loaded
			if !loaded {
				vm.Reload(ctx)
			}

			if err := loadPages(ctx, vm, pages, all); err != nil {
				return err
			}

			snap := vm.Snapshot()
			records := make([]postRecord, 0, len(snap.Items))
			for _, p := range snap.Items {
				records = append(records, toRecord(p))
			}
			if done, err := render(cmd.OutOrStdout(), records); done {
				return err
			}

			out := cmd.OutOrStdout()
			if len(snap.Items) == 0 {
				fmt.Fprintln(out, "No posts found.")
				return nil
			}
			printPostTable(out, snap.Items)
			fmt.Fprintf(out, "\n%s %s shown (page %d, %s, sorted by %s %s)",
				humanize.Comma(int64(len(snap.Items))), plural(len(snap.Items), "post", "posts"),
				snap.Page, snap.Filter, snap.SortBy, snap.SortOrder)
			if snap.HasNext {
				fmt.Fprintf(out, "; more available, use --pages %d", snap.Page+1)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "all", "Filter: all, published, drafts")
	cmd.Flags().StringVar(&sortBy, "sort-by", viewmodel.SortByUpdatedAt, "Sort field: updatedAt, createdAt, title")
	cmd.Flags().StringVar(&order, "order", viewmodel.SortDesc, "Sort order: asc, desc")
	cmd.Flags().StringVar(&preset, "sort", "", "Sort preset (overrides --sort-by and --order)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Keyword matched against title and content")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Posts per page (default from config)")
	cmd.Flags().IntVar(&pages, "pages", 1, "Number of pages to load")
	cmd.Flags().BoolVar(&all, "all", false, "Load every page")

	return cmd
}

// loadPages drives LoadMore until the requested number of pages is present
// or the server reports no further pages.
func loadPages(ctx context.Context, vm *viewmodel.ListViewModel, pages int, all bool) error {
	for {
		snap := vm.Snapshot()
		if snap.State == viewmodel.ListError {
			return errors.New(snap.ErrorMessage)
		}
		if !snap.HasNext || (!all && snap.Page >= pages) {
			return nil
		}
		if !vm.LoadMore(ctx) {
			return nil
		}
	}
}

func findPreset(name string) (viewmodel.SortPreset, bool) {
	for _, p := range viewmodel.SortPresets {
		if presetKey(p) == name {
			return p, true
		}
	}
	return viewmodel.SortPreset{}, false
}

func presetKey(p viewmodel.SortPreset) string {
	return p.By + "-" + p.Order
}

func presetNames() string {
	names := make([]string, 0, len(viewmodel.SortPresets))
	for _, p := range viewmodel.SortPresets {
		names = append(names, presetKey(p))
	}
	return strings.Join(names, ", ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
