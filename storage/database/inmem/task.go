package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/task"
)

type taskRepository struct {
	db *taskTable
}

var _ task.Repository = (*taskRepository)(nil)

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db.task}
}

func (repo *taskRepository) CreateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.rows = append(repo.db.rows, t)
	return t, nil
}

func (repo *taskRepository) GetTaskByID(_ context.Context, id string) (task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, t := range repo.db.rows {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) FilterTasks(_ context.Context, filter task.QueryFilter, srt task.Sort, page core.Pagination) ([]task.Task, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]task.Task, 0, len(repo.db.rows))
	for _, t := range repo.db.rows {
		if taskMatches(t, filter) {
			matches = append(matches, t)
		}
	}
	sortTasks(matches, srt)

	total := len(matches)
	lo, hi := page.Slice(total)
	return matches[lo:hi], total, nil
}

func (repo *taskRepository) QueryAllTasks(_ context.Context) ([]task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tasks := make([]task.Task, len(repo.db.rows))
	copy(tasks, repo.db.rows)
	sortTasks(tasks, task.Sort{By: "due_date"})
	return tasks, nil
}

func (repo *taskRepository) UpdateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i, row := range repo.db.rows {
		if row.ID == t.ID {
			repo.db.rows[i] = t
			return t, nil
		}
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) DeleteTasksByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	kept := repo.db.rows[:0]
	for _, row := range repo.db.rows {
		var drop bool
		for _, id := range ids {
			if row.ID == id {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, row)
		}
	}
	repo.db.rows = kept
	return nil
}

func taskMatches(t task.Task, filter task.QueryFilter) bool {
	if filter.Search != "" {
		s := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(t.Title), s) &&
			!strings.Contains(strings.ToLower(t.Description), s) &&
			!strings.Contains(strings.ToLower(t.Class), s) {
			return false
		}
	}
	if filter.Status != "" && t.Status != filter.Status {
		return false
	}
	if filter.Type != "" && t.Type != filter.Type {
		return false
	}
	if filter.Class != "" && !strings.Contains(strings.ToLower(t.Class), strings.ToLower(filter.Class)) {
		return false
	}
	if filter.Priority != "" && t.Priority != filter.Priority {
		return false
	}
	if !filter.DueBefore.IsZero() && !t.DueDate.Before(filter.DueBefore) {
		return false
	}
	if !filter.DueAfter.IsZero() && t.DueDate.Before(filter.DueAfter) {
		return false
	}
	if filter.ExcludeTerminal && (t.Status == task.StatusCompleted || t.Status == task.StatusCancelled) {
		return false
	}
	return true
}

func sortTasks(tasks []task.Task, srt task.Sort) {
	less := func(i, j int) bool { return tasks[i].DueDate.Before(tasks[j].DueDate) }
	switch srt.By {
	case "priority":
		less = func(i, j int) bool { return tasks[i].Priority < tasks[j].Priority }
	case "created_at":
		less = func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) }
	case "title":
		less = func(i, j int) bool { return tasks[i].Title < tasks[j].Title }
	}
	if srt.Desc {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(tasks, less)
}
