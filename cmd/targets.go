package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"jobmate/ats-ingest/internal/adapter"
	"jobmate/ats-ingest/internal/store"
)

func newTargetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Manage polling targets",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Register the targets of a YAML file in the store",
		Long: `Register the targets of a YAML file in the store.

Entries are matched on (ats, slug). Entries without api_url get the
endpoint of their adapter; unknown ATS types are imported without one
and are skipped by scrapes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := store.LoadTargetsFile(args[0])
			if err != nil {
				return err
			}
			reg := adapter.Default()
			for _, t := range targets {
				if _, ok := reg.Lookup(t.SourceType); !ok {
					a.log.Warnw("No adapter for target", "target", t.Slug, "ats", t.SourceType)
				}
			}

			be, err := openStore(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			defer be.close()

			for _, t := range withEndpoints(targets, reg) {
				if _, err := be.UpsertTarget(cmd.Context(), t); err != nil {
					return errors.Wrapf(err, "import %s/%s", t.SourceType, t.Slug)
				}
			}
			cmd.Printf("imported %d targets\n", len(targets))
			return nil
		},
	})
	return cmd
}
