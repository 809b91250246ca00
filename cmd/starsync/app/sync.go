package app

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSyncCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one synchronization and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, cmd, v)
			if err != nil {
				return err
			}
			defer app.Close()

			report := app.syncer.SyncOnce(ctx)
			if report.Err != nil {
				return report.Err
			}

			app.log.WithFields(logrus.Fields{
				"skipped":   report.Skipped,
				"fetched":   report.Fetched,
				"created":   report.Created,
				"updated":   report.Updated,
				"deleted":   report.Deleted,
				"unchanged": report.Unchanged,
			}).Info("Sync finished")
			return nil
		},
	}
}
