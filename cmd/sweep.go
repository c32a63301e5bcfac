package main

import (
	"github.com/spf13/cobra"

	"jobmate/ats-ingest/internal/scheduler"
)

func newSweepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Deactivate stale jobs and delete expired ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			be, err := openStore(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			defer be.close()

			res, err := scheduler.NewRetention(be, a.cfg.StaleHours, a.cfg.TTLDays, a.log.Named("retention")).
				Sweep(cmd.Context())
			cmd.Printf("deactivated=%d deleted=%d\n", res.Deactivated, res.Deleted)
			return err
		},
	}
}
