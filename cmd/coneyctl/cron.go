package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/logging"
	"github.com/robfig/cron/v3"
)

const jobTimeout = 10 * time.Minute

type job struct {
	name     string
	schedule string
	run      func(ctx context.Context) error
}

func runCron(parent context.Context, d *deps, warmSchedule, recalculateSchedule string) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobs := []job{
		{name: "warm-leaderboards", schedule: warmSchedule, run: d.boards.Warm},
		{name: "recalculate", schedule: recalculateSchedule, run: func(ctx context.Context) error {
			total, err := d.progress.RecalculateAll(ctx)
			if err == nil {
				d.logger.WithField("unlocked", total).Info("Nightly recalculation done")
			}
			return err
		}},
	}

	runner := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	for _, j := range jobs {
		j := j
		if j.schedule == "" {
			continue
		}
		_, err := runner.AddFunc(j.schedule, func() {
			jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
			defer cancel()
			start := time.Now()
			if err := j.run(jobCtx); err != nil {
				logging.LogError(d.logger, "coneyctl", "runCron", j.name, nil, err)
				return
			}
			d.logger.WithField("job", j.name).WithField("took", time.Since(start).String()).Debug("Job finished")
		})
		if err != nil {
			return err
		}
		d.logger.WithField("job", j.name).WithField("schedule", j.schedule).Info("Job scheduled")
	}

	runner.Start()
	<-ctx.Done()
	d.logger.Info("Stopping cron")
	<-runner.Stop().Done()
	return nil
}
