package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abraham-mv/huon-test/internal/ioformats"
	"github.com/abraham-mv/huon-test/internal/sites"
	"github.com/abraham-mv/huon-test/internal/store"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	var site, db, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write records saved by earlier crawls as NDJSON",
		Example: `  lobbyreg export --db crawl.db --site ns --output ns.ndjson
  lobbyreg export --db crawl.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if site != "" && !sites.Known(site) {
				return fmt.Errorf("%w: %q (known: %v)", sites.ErrUnknownSite, site, sites.IDs())
			}
			_, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			st, err := store.Open(db)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			recs, err := st.Records(cmd.Context(), site)
			if err != nil {
				return err
			}
			w, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return fmt.Errorf("open output: %w", err)
			}
			defer func() { _ = closeOut() }()
			if err := ioformats.WriteNDJSON(w, recs); err != nil {
				return fmt.Errorf("write records: %w", err)
			}
			log.Info("export finished", "site", site, "records", len(recs))
			return closeOut()
		},
	}

	cmd.Flags().StringVarP(&site, "site", "s", "", "Only export this registry (default: all)")
	cmd.Flags().StringVar(&db, "db", "", "SQLite file written by crawl --db")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output NDJSON file (default stdout)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
