package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kaamkhojo-engine/internal/domain"
	"kaamkhojo-engine/internal/listing"
	"kaamkhojo-engine/internal/store"
)

var queryJSON bool

var queryCmd = &cobra.Command{
	Use:   "query <listing-url>",
	Short: "Show what a listing URL displays",
	Long: `Evaluate a listing URL such as "/jobs?q=react&category=white-collar" against the store
and print the matching records in display order.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	rawURL := args[0]
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	kind, ok := domain.KindForScreen(strings.TrimSuffix(u.Path, "/"))
	if !ok {
		return fmt.Errorf("unknown listing path %q", u.Path)
	}

	env, err := loadRuntime()
	if err != nil {
		return err
	}
	db, err := openStore(env.dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	src := store.Source{DB: db.Pool, Window: env.cfg.Listing.Window}
	page, err := listing.Open(cmd.Context(), src, kind, u.RequestURI(), nil)
	if err != nil {
		return err
	}
	defer page.Close()

	out := cmd.OutOrStdout()
	if queryJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"url":      page.URL(),
			"criteria": page.Criteria(),
			"total":    page.Total(),
			"records":  page.Results(),
		})
	}

	fmt.Fprintf(out, "%s  (%d of %d)\n", page.URL(), len(page.Results()), page.Total())
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tLOCATION\tCATEGORY\tTYPE")
	for _, r := range page.Results() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Title, r.Company, r.Location, r.Category, r.Type)
	}
	return tw.Flush()
}
