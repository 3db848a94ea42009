package repository

import (
	"context"
	"database/sql"
	"errors"
	"iter"
	"strings"

	"github.com/Dan9191/task-service/internal/models"
	"github.com/google/uuid"
)

const taskColumns = `id, task, due_date, status, priority, created_by`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner, t *models.Task) error {
	return row.Scan(&t.ID, &t.Task, &t.DueDate, &t.Status, &t.Priority, &t.CreatedBy)
}

// CreateTask validates and inserts a task, assigning its id
func (r *Repository) CreateTask(ctx context.Context, task *models.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	task.ID = uuid.NewString()
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.rebind(query),
		task.ID, task.Task, task.DueDate, task.Status, task.Priority, task.CreatedBy)
	if err != nil {
		task.ID = ""
		return storeErr("create task", err)
	}
	return nil
}

// FindTaskByID returns models.ErrNotFound for unknown or malformed ids
func (r *Repository) FindTaskByID(ctx context.Context, id string) (*models.Task, error) {
	if uuid.Validate(id) != nil {
		return nil, models.ErrNotFound
	}
	task := &models.Task{}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	err := scanTask(r.db.QueryRowContext(ctx, r.rebind(query), id), task)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("find task", err)
	}
	return task, nil
}

// FindTasksByOwner lazily yields the owner's tasks. The query runs when the
// sequence is ranged over; an owner without tasks yields nothing.
func (r *Repository) FindTasksByOwner(ctx context.Context, ownerID string) iter.Seq2[models.Task, error] {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE created_by = ? ORDER BY due_date, id`
	return r.queryTasks(ctx, "find tasks by owner", query, ownerID)
}

// FindTasksDueOn yields every task due on day
func (r *Repository) FindTasksDueOn(ctx context.Context, day models.Date) iter.Seq2[models.Task, error] {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE due_date = ? ORDER BY created_by, id`
	return r.queryTasks(ctx, "find tasks due", query, day)
}

func (r *Repository) queryTasks(ctx context.Context, op, query string, args ...any) iter.Seq2[models.Task, error] {
	return func(yield func(models.Task, error) bool) {
		rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
		if err != nil {
			yield(models.Task{}, storeErr(op, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var t models.Task
			if err := scanTask(rows, &t); err != nil {
				yield(models.Task{}, storeErr(op, err))
				return
			}
			if !yield(t, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.Task{}, storeErr(op, err))
		}
	}
}

// UpdateTask overwrites only the fields set in patch
func (r *Repository) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if uuid.Validate(id) != nil {
		return nil, models.ErrNotFound
	}
	if patch.Empty() {
		return r.FindTaskByID(ctx, id)
	}

	// Column names come from this fixed list, never from the request.
	var sets []string
	var args []any
	if patch.Task != nil {
		sets, args = append(sets, "task = ?"), append(args, *patch.Task)
	}
	if patch.DueDate != nil {
		sets, args = append(sets, "due_date = ?"), append(args, *patch.DueDate)
	}
	if patch.Status != nil {
		sets, args = append(sets, "status = ?"), append(args, *patch.Status)
	}
	if patch.Priority != nil {
		sets, args = append(sets, "priority = ?"), append(args, *patch.Priority)
	}
	args = append(args, id)

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := r.db.ExecContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, storeErr("update task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, storeErr("update task", err)
	}
	if n == 0 {
		return nil, models.ErrNotFound
	}
	return r.FindTaskByID(ctx, id)
}

// DeleteTask returns the number of deleted rows; zero is not an error
func (r *Repository) DeleteTask(ctx context.Context, id string) (int64, error) {
	if uuid.Validate(id) != nil {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return 0, storeErr("delete task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("delete task", err)
	}
	return n, nil
}
