// This file defines the task store.  Every query is filtered on both the task
// id and the owning user id, so a task owned by someone else is
// indistinguishable from one that does not exist.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/task-tracker/internal/model"
)

// TaskRepo encapsulates all database queries related to tasks.
type TaskRepo struct {
	db *sql.DB
}

// NewTaskRepo constructs a TaskRepo with the provided DB handle.
func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

const taskColumns = "id, user_id, title, description, priority, status, due_date, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var (
		t           model.Task
		description sql.NullString
		due         sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &description, &t.Priority, &t.Status,
		&due, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return model.Task{}, err
	}
	if description.Valid {
		t.Description = &description.String
	}
	if due.Valid {
		d := due.Time.UTC()
		t.DueDate = &d
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// ListByOwner returns all tasks of ownerID in insertion order.  The result
// is never nil.
func (r *TaskRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

// Create inserts t and reloads the persisted row into it, inside one
// transaction.  t.UserID, timestamps and enum fields must already be set.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	err := WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (user_id, title, description, priority, status, due_date, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.UserID, t.Title, nullString(t.Description), string(t.Priority), string(t.Status),
			nullTime(t.DueDate), t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		stored, err := scanTask(tx.QueryRowContext(ctx,
			"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
		if err != nil {
			return err
		}
		*t = stored
		return nil
	})
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindOwned looks up task id for ownerID.  found is false when no such task
// exists or when it belongs to another user; the two cases are not told
// apart.
func (r *TaskRepo) FindOwned(ctx context.Context, id, ownerID uint64) (task model.Task, found bool, err error) {
	task, err = scanTask(r.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND user_id = ?", id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, false, nil
	}
	if err != nil {
		return model.Task{}, false, fmt.Errorf("get task: %w", err)
	}
	return task, true, nil
}

// UpdateOwned locks task id for ownerID, applies patch stamped with now and
// writes the result back in a single transaction.  found is false when the
// caller does not own such a task; nothing is written in that case.
func (r *TaskRepo) UpdateOwned(ctx context.Context, id, ownerID uint64, patch model.TaskPatch, now time.Time) (task model.Task, found bool, err error) {
	err = WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		cur, err := scanTask(tx.QueryRowContext(ctx,
			"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND user_id = ? FOR UPDATE", id, ownerID))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		patch.Apply(&cur, now)
		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks
			 SET title = ?, description = ?, priority = ?, status = ?, due_date = ?, updated_at = ?
			 WHERE id = ? AND user_id = ?`,
			cur.Title, nullString(cur.Description), string(cur.Priority), string(cur.Status),
			nullTime(cur.DueDate), cur.UpdatedAt, id, ownerID); err != nil {
			return err
		}
		task, found = cur, true
		return nil
	})
	if err != nil {
		return model.Task{}, false, fmt.Errorf("update task: %w", err)
	}
	return task, found, nil
}

// DeleteOwned hard-deletes task id for ownerID.  found is false when no row
// was removed.
func (r *TaskRepo) DeleteOwned(ctx context.Context, id, ownerID uint64) (found bool, err error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return n > 0, nil
}
