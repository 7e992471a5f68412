package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abraham-mv/huon-test/internal/ioformats"
	"github.com/abraham-mv/huon-test/internal/runner"
	"github.com/abraham-mv/huon-test/internal/sites"
)

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	var site, input, output string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract records from saved registration pages",
		Long: `Extract records from pages saved earlier, without network access.

The input is NDJSON with one {site, rid, rdate, pages} object per line, or a
CSV manifest with columns site, rid, label and path. Lines without a site,
and pages without a label, are classified from their markup.`,
		Example: `  lobbyreg extract --input pages.ndjson --output records.ndjson
  lobbyreg extract --site ns --input manifest.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if site != "" && !sites.Known(site) {
				return fmt.Errorf("%w: %q (known: %v)", sites.ErrUnknownSite, site, sites.IDs())
			}
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			lines, err := ioformats.ReadBags(input)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			w, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return fmt.Errorf("open output: %w", err)
			}
			defer func() { _ = closeOut() }()
			out := ioformats.NewRecordWriter(w)

			r := runner.New(cfg, log, nil)
			var failed []error
			for i, line := range lines {
				if line.Site == "" {
					line.Site = site
				}
				rec, err := r.Extract(line)
				if err != nil {
					log.Warn("extract failed", "line", i+1, "rid", line.RID, "error", err)
					failed = append(failed, fmt.Errorf("line %d: %w", i+1, err))
					continue
				}
				if err := out.Write(rec); err != nil {
					return fmt.Errorf("write record %s: %w", rec.RID, err)
				}
			}
			log.Info("extract finished", "lines", len(lines), "failed", len(failed))
			if err := closeOut(); err != nil {
				return err
			}
			return errors.Join(failed...)
		},
	}

	cmd.Flags().StringVarP(&site, "site", "s", "", "Registry the pages came from (default: classify)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input NDJSON file or CSV manifest")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output NDJSON file (default stdout)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
