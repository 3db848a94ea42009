// Package reminder mails a daily digest of tasks that fall due.
package reminder

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/Dan9191/task-service/internal/metrics"
	"github.com/Dan9191/task-service/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DueTasks yields every task due on a given day
type DueTasks interface {
	FindTasksDueOn(ctx context.Context, day models.Date) iter.Seq2[models.Task, error]
}

// Notifier delivers a digest
type Notifier interface {
	SendDueDigest(to []string, day models.Date, tasks []models.Task) error
}

// Reminder runs the digest job on a cron schedule
type Reminder struct {
	tasks    DueTasks
	notifier Notifier
	to       []string
	skip     map[string]struct{}
	log      *logrus.Logger
	now      func() time.Time
	timeout  time.Duration

	cron *cron.Cron
}

// NewReminder builds a reminder; statuses in skip (case-insensitive) are left out of the digest
func NewReminder(tasks DueTasks, notifier Notifier, to, skip []string, log *logrus.Logger) *Reminder {
	skipSet := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			skipSet[s] = struct{}{}
		}
	}
	return &Reminder{
		tasks:    tasks,
		notifier: notifier,
		to:       to,
		skip:     skipSet,
		log:      log,
		now:      time.Now,
		timeout:  time.Minute,
	}
}

// Start schedules the job with a standard five-field cron spec
func (r *Reminder) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, r.run); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	r.cron = c
	c.Start()
	r.log.WithField("schedule", spec).Info("Reminder scheduled")
	return nil
}

// Stop waits for a running job to finish
func (r *Reminder) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

func (r *Reminder) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if _, err := r.RunOnce(ctx); err != nil {
		r.log.WithError(err).Error("Reminder run failed")
	}
}

// RunOnce sends today's digest and returns how many tasks it listed.
// Nothing is sent when no task qualifies.
func (r *Reminder) RunOnce(ctx context.Context) (int, error) {
	day := models.NewDate(r.now())

	var due []models.Task
	for task, err := range r.tasks.FindTasksDueOn(ctx, day) {
		if err != nil {
			metrics.RemindersSent.WithLabelValues("error").Inc()
			return 0, err
		}
		if _, skipped := r.skip[strings.ToLower(strings.TrimSpace(task.Status))]; skipped {
			continue
		}
		due = append(due, task)
	}

	if len(due) == 0 {
		r.log.WithField("day", day.String()).Debug("No tasks due")
		metrics.RemindersSent.WithLabelValues("empty").Inc()
		return 0, nil
	}

	if err := r.notifier.SendDueDigest(r.to, day, due); err != nil {
		metrics.RemindersSent.WithLabelValues("error").Inc()
		return 0, err
	}
	metrics.RemindersSent.WithLabelValues("ok").Inc()
	r.log.WithFields(logrus.Fields{"day": day.String(), "tasks": len(due)}).Info("Reminder digest sent")
	return len(due), nil
}
