package pgrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/task"
)

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil)

func NewTaskRepository(db *sqlx.DB) task.Repository {
	return &taskRepository{db: db}
}

// taskRow maps the nullable completed_at column.
type taskRow struct {
	ID          string        `db:"id"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	Type        task.Type     `db:"type"`
	Class       string        `db:"class"`
	DueDate     time.Time     `db:"due_date"`
	Status      task.Status   `db:"status"`
	Priority    task.Priority `db:"priority"`
	CompletedAt sql.NullTime  `db:"completed_at"`
	CreatedBy   string        `db:"created_by"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func (r taskRow) toTask() task.Task {
	t := task.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		Class:       r.Class,
		DueDate:     r.DueDate,
		Status:      r.Status,
		Priority:    r.Priority,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.CompletedAt.Valid {
		t.CompletedAt = r.CompletedAt.Time
	}
	return t
}

func toTaskRow(t task.Task) taskRow {
	row := taskRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Type:        t.Type,
		Class:       t.Class,
		DueDate:     t.DueDate,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if !t.CompletedAt.IsZero() {
		row.CompletedAt = sql.NullTime{Time: t.CompletedAt, Valid: true}
	}
	return row
}

func toTasks(rows []taskRow) []task.Task {
	tasks := make([]task.Task, len(rows))
	for i, r := range rows {
		tasks[i] = r.toTask()
	}
	return tasks
}

func (repo *taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	const q = `
INSERT INTO task (id, title, description, type, class, due_date, status, priority, completed_at, created_by, created_at, updated_at)
VALUES (:id, :title, :description, :type, :class, :due_date, :status, :priority, :completed_at, :created_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toTaskRow(t)); err != nil {
		return task.Task{}, errors.Wrap(err, "inserting task")
	}
	return t, nil
}

func (repo *taskRepository) GetTaskByID(ctx context.Context, id string) (task.Task, error) {
	var row taskRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM task WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return task.Task{}, task.ErrNotFound
	}
	if err != nil {
		return task.Task{}, errors.Wrap(err, "getting task")
	}
	return row.toTask(), nil
}

func (repo *taskRepository) FilterTasks(ctx context.Context, filter task.QueryFilter, sort task.Sort, page core.Pagination) ([]task.Task, int, error) {
	where, args := buildTaskWhere(filter)

	var total int
	countQ := "SELECT COUNT(*) FROM task" + where
	if err := repo.db.GetContext(ctx, &total, countQ, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting tasks")
	}

	ord := taskOrdering(sort)
	listQ := fmt.Sprintf(
		"SELECT * FROM task%s ORDER BY %s LIMIT %d OFFSET %d",
		where, ord, page.Limit, page.Offset(),
	)
	rows := make([]taskRow, 0, page.Limit)
	if err := repo.db.SelectContext(ctx, &rows, listQ, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering tasks")
	}
	return toTasks(rows), total, nil
}

func (repo *taskRepository) QueryAllTasks(ctx context.Context) ([]task.Task, error) {
	var rows []taskRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM task ORDER BY due_date, created_at`); err != nil {
		return nil, errors.Wrap(err, "querying all tasks")
	}
	return toTasks(rows), nil
}

func (repo *taskRepository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	const q = `
UPDATE task
SET title = :title, description = :description, type = :type, class = :class, due_date = :due_date,
    status = :status, priority = :priority, completed_at = :completed_at, updated_at = :updated_at
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, toTaskRow(t))
	if err != nil {
		return task.Task{}, errors.Wrap(err, "updating task")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (repo *taskRepository) DeleteTasksByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM task WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building task delete")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting tasks")
	}
	return nil
}

func taskOrdering(sort task.Sort) string {
	col := "due_date"
	switch sort.By {
	case "due_date", "priority", "created_at", "title":
		col = sort.By
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	// created_at keeps equal keys in insertion order
	return fmt.Sprintf("%s %s, created_at", col, dir)
}

func buildTaskWhere(filter task.QueryFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s OR class ILIKE %s)", p, p, p))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(string(filter.Status)))
	}
	if filter.Type != "" {
		conds = append(conds, "type = "+arg(string(filter.Type)))
	}
	if filter.Class != "" {
		conds = append(conds, "class ILIKE "+arg("%"+filter.Class+"%"))
	}
	if filter.Priority != "" {
		conds = append(conds, "priority = "+arg(string(filter.Priority)))
	}
	if !filter.DueBefore.IsZero() {
		conds = append(conds, "due_date < "+arg(filter.DueBefore))
	}
	if !filter.DueAfter.IsZero() {
		conds = append(conds, "due_date >= "+arg(filter.DueAfter))
	}
	if filter.ExcludeTerminal {
		conds = append(conds, "status NOT IN ('completed', 'cancelled')")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
