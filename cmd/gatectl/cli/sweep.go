package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/uleam/vehicle-gate/internal/platform/cache"
	"github.com/uleam/vehicle-gate/jobs"
)

func sweepCmd(rt *runtime) *cobra.Command {
	var (
		retention time.Duration
		enqueue   bool
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove profiles idle for longer than the retention.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if retention <= 0 && rt.deps.Config != nil {
				retention = rt.deps.Config.SweepRetention
			}
			if enqueue {
				if rt.deps.Config == nil {
					return errors.New("sweep: no configuration for the job queue")
				}
				opt, err := cache.AsynqOpt(rt.deps.Config.RedisAddr)
				if err != nil {
					return err
				}
				client, err := jobs.NewClient(opt)
				if err != nil {
					return err
				}
				defer client.Close()
				info, err := client.EnqueueStorageSweep(cmd.Context(), retention)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s on %s\n", info.ID, info.Queue)
				return nil
			}

			st, err := rt.deps.OpenStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			if st.Sweeper == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "backend expires profiles on its own")
				return nil
			}
			removed, err := st.Sweeper.Sweep(cmd.Context(), retention)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d profiles\n", removed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&retention, "retention", 0, "idle time after which a profile is removed")
	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "queue the sweep for the worker instead of running it")
	return cmd
}
