package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reflaxess123/obedi/internal/kernel"
	"github.com/reflaxess123/obedi/pkg/logger"
	"github.com/reflaxess123/obedi/pkg/schedule"
)

var (
	queueWorkersFlag int
	sweepEveryFlag   time.Duration
	sweepDeleteFlag  bool
)

// obedi queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start queue workers and the storage sweep schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer k.Close()

		if k.QueueIsLocal {
			logger.Warn("queue: no redis queue configured, only jobs dispatched by this process will run")
		}

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 5
		}
		wg := k.Queue.StartWorkers(ctx, workers)

		sched := schedule.New()
		if sweepEveryFlag > 0 {
			sched.Every(sweepEveryFlag).Name("storage:sweep").WithoutOverlapping().Run(func(ctx context.Context) error {
				_, err := k.Sweeper.Sweep(ctx, false, false)
				return err
			})
		}
		for _, t := range sched.List() {
			fmt.Fprintln(cmd.OutOrStdout(), "  •", t)
		}
		sched.Start(ctx)

		fmt.Fprintf(cmd.OutOrStdout(), "Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		<-ctx.Done()
		wg.Wait()
		sched.Wait()
		fmt.Fprintln(cmd.OutOrStdout(), "Queue worker stopped.")
		return nil
	},
}

// obedi storage:sweep
var storageSweepCmd = &cobra.Command{
	Use:   "storage:sweep",
	Short: "Report (and with --delete remove) stored images no lunch references",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer k.Close()

		// A one-shot pass has no previous pass to confirm against, so
		// --delete removes every orphan it finds.
		rep, err := k.Sweeper.Sweep(ctx, sweepDeleteFlag, !sweepDeleteFlag)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, key := range rep.Orphans {
			fmt.Fprintln(out, "  orphan:", key)
		}
		fmt.Fprintf(out, "scanned=%d orphans=%d deleted=%d failed=%d deferred=%d\n",
			rep.Scanned, len(rep.Orphans), rep.Deleted, rep.Failed, rep.Deferred)
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 5, "Number of concurrent workers")
	queueWorkCmd.Flags().DurationVar(&sweepEveryFlag, "sweep-every", time.Hour, "Storage sweep interval (0 disables)")

	storageSweepCmd.Flags().BoolVar(&sweepDeleteFlag, "delete", false, "Delete orphans instead of only listing them")
}
