package task

import (
	"testing"
	"time"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func Test_Task_EffectiveStatus(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		due    time.Time
		want   Status
	}{
		{name: "pending with future due", status: StatusPending, due: now.Add(time.Hour), want: StatusPending},
		{name: "pending past due", status: StatusPending, due: now.Add(-time.Hour), want: StatusOverdue},
		{name: "in-progress past due", status: StatusInProgress, due: now.Add(-time.Minute), want: StatusOverdue},
		{name: "completed is sticky", status: StatusCompleted, due: now.Add(-time.Hour), want: StatusCompleted},
		{name: "cancelled is sticky", status: StatusCancelled, due: now.Add(-time.Hour), want: StatusCancelled},
		{name: "stored overdue with pushed-out due date", status: StatusOverdue, due: now.Add(time.Hour), want: StatusPending},
		{name: "stored overdue still past due", status: StatusOverdue, due: now.Add(-time.Hour), want: StatusOverdue},
		{name: "due exactly now", status: StatusPending, due: now, want: StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{Status: tt.status, DueDate: tt.due}
			if got := task.EffectiveStatus(now); got != tt.want {
				t.Errorf("EffectiveStatus() = %v; want %v", got, tt.want)
			}
		})
	}
}

func Test_Task_Reconcile(t *testing.T) {
	t.Run("past due stored as overdue", func(t *testing.T) {
		task := Task{Status: StatusPending, DueDate: now.Add(-time.Hour)}
		task.Reconcile(now)
		if task.Status != StatusOverdue {
			t.Errorf("Status = %v; want %v", task.Status, StatusOverdue)
		}
	})

	t.Run("completed sets completedAt once", func(t *testing.T) {
		task := Task{Status: StatusCompleted, DueDate: now.Add(time.Hour)}
		task.Reconcile(now)
		if !task.CompletedAt.Equal(now.UTC()) {
			t.Errorf("CompletedAt = %v; want %v", task.CompletedAt, now.UTC())
		}

		// a later reconcile keeps the original completion time
		later := now.Add(2 * time.Hour)
		task.Reconcile(later)
		if !task.CompletedAt.Equal(now.UTC()) {
			t.Errorf("CompletedAt = %v; want %v", task.CompletedAt, now.UTC())
		}
	})

	t.Run("leaving completed clears completedAt", func(t *testing.T) {
		task := Task{Status: StatusCompleted, DueDate: now.Add(time.Hour)}
		task.Reconcile(now)

		task.Status = StatusInProgress
		task.Reconcile(now)
		if !task.CompletedAt.IsZero() {
			t.Errorf("CompletedAt = %v; want zero", task.CompletedAt)
		}
	})
}
