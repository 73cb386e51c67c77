package main

import (
	"context"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bodega/internal/kernel"
)

// bootBackground boots the kernel with listeners, jobs and the queue
// driver wired, for the commands that only run background work.
func bootBackground() (*kernel.Kernel, error) {
	k, err := kernel.Boot()
	if err != nil {
		return nil, err
	}
	if err := k.Background(); err != nil {
		k.Close()
		return nil, err
	}
	return k, nil
}

var queueWorkers int

// bodega queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Run queue workers until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := bootBackground()
		if err != nil {
			return err
		}
		defer k.Close()

		if queueWorkers < 1 {
			queueWorkers = 1
		}
		ok("%d queue worker(s) started, ctrl+c to stop", queueWorkers)
		wg := k.Queue.StartWorkers(ctx, queueWorkers)
		<-ctx.Done()
		wg.Wait()
		muted("queue workers stopped")
		return nil
	},
}

var queueFailedLimit int

// bodega queue:failed
var queueFailedCmd = &cobra.Command{
	Use:   "queue:failed",
	Short: "List jobs that exhausted their retries",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := bootBackground()
		if err != nil {
			return err
		}
		defer k.Close()

		failed, err := k.Queue.StoredFailures(cmd.Context(), queueFailedLimit)
		if err != nil {
			return err
		}
		if len(failed) == 0 {
			ok("no failed jobs")
			return nil
		}
		rows := [][]string{{"ID", "JOB", "ATTEMPTS", "FAILED AT", "ERROR"}}
		for _, f := range failed {
			rows = append(rows, []string{
				strconv.FormatUint(uint64(f.ID), 10),
				f.JobType,
				strconv.Itoa(f.Attempts),
				f.FailedAt.Format("2006-01-02 15:04:05"),
				f.Error,
			})
		}
		table(rows)
		return nil
	},
}

var scheduleOnce string

// bodega schedule:run [--once low-stock-scan]
var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Run the scheduler until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := bootBackground()
		if err != nil {
			return err
		}
		defer k.Close()

		if scheduleOnce != "" {
			if err := k.Scheduler.RunNow(ctx, scheduleOnce); err != nil {
				return err
			}
			ok("%s finished", scheduleOnce)
			return nil
		}

		rows := [][]string{{"TASK", "EVERY"}}
		for _, e := range k.Scheduler.List() {
			rows = append(rows, []string{e.Name, e.Interval.String()})
		}
		table(rows)

		k.Scheduler.Start(ctx)
		<-ctx.Done()
		k.Scheduler.Wait()
		muted("scheduler stopped")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkers, "workers", "w", 4, "number of concurrent workers")
	queueFailedCmd.Flags().IntVar(&queueFailedLimit, "limit", 20, "how many failures to show")
	scheduleRunCmd.Flags().StringVar(&scheduleOnce, "once", "", "run the named task once and exit")
}
