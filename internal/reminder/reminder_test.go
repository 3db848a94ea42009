package reminder

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/Dan9191/task-service/internal/models"
	"github.com/Dan9191/task-service/internal/repository"
	"github.com/sirupsen/logrus"
)

type recordingNotifier struct {
	calls int
	to    []string
	day   models.Date
	tasks []models.Task
	err   error
}

func (n *recordingNotifier) SendDueDigest(to []string, day models.Date, tasks []models.Task) error {
	n.calls++
	n.to, n.day, n.tasks = to, day, tasks
	return n.err
}

func newTestReminder(t *testing.T, notifier Notifier, due map[string]string) (*Reminder, *repository.Repository) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo, err := repository.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	for status, day := range due {
		d, err := models.ParseDate(day)
		if err != nil {
			t.Fatalf("parse date: %v", err)
		}
		task := &models.Task{Task: "task " + status, DueDate: d, Status: status, Priority: "high", CreatedBy: "alice-id"}
		if err := repo.CreateTask(context.Background(), task); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	r := NewReminder(repo, notifier, []string{"ops@example.com"}, []string{"done", " Completed "}, logger)
	r.now = func() time.Time { return time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC) }
	return r, repo
}

func TestRunOnceSendsDueTasks(t *testing.T) {
	notifier := &recordingNotifier{}
	r, _ := newTestReminder(t, notifier, map[string]string{
		"open":        "2024-01-01",
		"in-progress": "2024-01-01",
		"DONE":        "2024-01-01",
		"completed":   "2024-01-01",
		"later":       "2024-01-02",
	})

	n, err := r.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 2 || notifier.calls != 1 || len(notifier.tasks) != 2 {
		t.Fatalf("expected one digest with 2 tasks, got n=%d calls=%d tasks=%d", n, notifier.calls, len(notifier.tasks))
	}
	if notifier.day.String() != "2024-01-01" || notifier.to[0] != "ops@example.com" {
		t.Fatalf("unexpected digest envelope day=%s to=%v", notifier.day, notifier.to)
	}
	for _, task := range notifier.tasks {
		if task.Status != "open" && task.Status != "in-progress" {
			t.Fatalf("unexpected status in digest %q", task.Status)
		}
	}
}

func TestRunOnceSkipsEmptyDay(t *testing.T) {
	notifier := &recordingNotifier{}
	r, _ := newTestReminder(t, notifier, map[string]string{"done": "2024-01-01", "open": "2024-01-05"})

	n, err := r.RunOnce(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("expected nothing to send, got %d %v", n, err)
	}
	if notifier.calls != 0 {
		t.Fatalf("expected no digest, got %d calls", notifier.calls)
	}
}

func TestRunOnceErrors(t *testing.T) {
	boom := errors.New("smtp down")
	notifier := &recordingNotifier{err: boom}
	r, repo := newTestReminder(t, notifier, map[string]string{"open": "2024-01-01"})

	if _, err := r.RunOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected notifier error, got %v", err)
	}

	repo.Close()
	if _, err := r.RunOnce(context.Background()); !errors.Is(err, models.ErrStoreUnavailable) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	r, _ := newTestReminder(t, &recordingNotifier{}, nil)
	if err := r.Start("not a schedule"); err == nil {
		t.Fatalf("expected invalid schedule error")
	}
	if err := r.Start("0 8 * * *"); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.Stop()
}
