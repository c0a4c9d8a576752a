package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-client/core/task"
	"github.com/trezcool/masomo-client/core/user"
)

func taskFilter() task.QueryFilter { return task.QueryFilter{} }

func TestTasks(t *testing.T) {
	ctx := context.Background()
	c, _ := signup(t, user.RoleTeacher)
	other, _ := signup(t, user.RoleTeacher)

	due := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	created, err := c.Tasks.CreateTask(ctx, task.NewTask{Title: "  Grade essays ", Priority: task.PriorityHigh, IsUrgent: true, DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, "Grade essays", created.Title)
	assert.Equal(t, task.StatusPending, created.Status)
	assert.True(t, created.DueDate.Time.Equal(due))
	assert.Equal(t, "Test teacher", created.CreatedBy.String)

	_, err = c.Tasks.CreateTask(ctx, task.NewTask{Title: "Plan lesson"})
	require.NoError(t, err)

	t.Run("list and filter", func(t *testing.T) {
		all, err := c.Tasks.ListTasks(ctx, task.QueryFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		urgent := true
		filtered, err := c.Tasks.ListTasks(ctx, task.QueryFilter{IsUrgent: &urgent, Priority: task.PriorityHigh})
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, created.ID, filtered[0].ID)

		dueSoon, err := c.Tasks.ListTasks(ctx, task.QueryFilter{DueBefore: due.Add(time.Hour)})
		require.NoError(t, err)
		assert.Len(t, dueSoon, 1)
	})

	t.Run("owner only", func(t *testing.T) {
		_, err := other.Tasks.GetTask(ctx, created.ID)
		assert.EqualError(t, err, "Task not found.")
	})

	title, status := "Grade all essays", task.StatusInProgress
	updated, err := c.Tasks.UpdateTask(ctx, created.ID, task.UpdateTask{Title: &title, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, task.StatusInProgress, updated.Status)

	done, err := c.Tasks.CompleteTask(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, done.IsCompleted())
	assert.True(t, done.CompletedAt.Valid)

	pending, err := c.Tasks.ListTasks(ctx, task.QueryFilter{Status: task.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, c.Tasks.DeleteTask(ctx, created.ID))
	_, err = c.Tasks.GetTask(ctx, created.ID)
	assert.EqualError(t, err, "Task not found.")
	assert.EqualError(t, c.Tasks.DeleteTask(ctx, created.ID), "Task not found.")
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	c, sess := signup(t, user.RoleStudent)
	_, err := c.Tasks.CreateTask(ctx, task.NewTask{Title: "Homework"})
	require.NoError(t, err)

	dash, err := c.LoadDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, dash.Profile.ID)
	require.NotNil(t, dash.Balance)
	assert.Zero(t, dash.Balance.Summary.RemainingHours)
	assert.Len(t, dash.PendingTasks, 1)
	assert.Zero(t, dash.UnreadCount)
}
