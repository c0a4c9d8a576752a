package task

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/transport"
	"github.com/trezcool/masomo-client/core/transport/transporttest"
)

const taskJSON = `{
	"id": 12,
	"title": "Prepare lesson plan",
	"description": "Week 3",
	"status": "pending",
	"priority": "high",
	"task_type": "personal",
	"is_urgent": true,
	"due_date": "2024-10-01T09:00:00Z",
	"completed_at": null,
	"created_at": "2024-09-20T09:00:00Z",
	"updated_at": "2024-09-20T09:00:00Z"
}`

func TestService_ListTasks(t *testing.T) {
	urgent := true
	due := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    QueryFilter
		wantQuery url.Values
		body      string
		wantLen   int
	}{
		{name: "bare list", wantQuery: url.Values{}, body: `[` + taskJSON + `]`, wantLen: 1},
		{
			name:      "paginated",
			filter:    QueryFilter{Status: StatusPending, IsUrgent: &urgent, DueBefore: due, Page: 2},
			wantQuery: url.Values{"status": {"pending"}, "is_urgent": {"true"}, "due_date__lte": {"2024-10-01T00:00:00Z"}, "page": {"2"}},
			body:      `{"count": 3, "next": null, "results": [` + taskJSON + `,` + taskJSON + `]}`,
			wantLen:   2,
		},
		{name: "empty", wantQuery: url.Values{}, body: `{"count": 0, "results": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(transporttest.Requester)
			client.On("Get", mock.Anything, "/tasks/", tt.wantQuery).Return(transporttest.JSON(tt.body), nil)

			tasks, err := NewService(client).ListTasks(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Len(t, tasks, tt.wantLen)
			assert.NotNil(t, tasks)
			client.AssertExpectations(t)
		})
	}

	t.Run("bad status", func(t *testing.T) {
		_, err := NewService(new(transporttest.Requester)).ListTasks(context.Background(), QueryFilter{Status: "done"})
		assert.True(t, core.IsValidationError(err))
	})
}

func TestService_errors(t *testing.T) {
	ctx := context.Background()
	calls := []struct {
		name    string
		method  string
		path    string
		call    func(svc *Service) error
		generic string
	}{
		{
			name: "get", method: "Get", path: "/tasks/12/",
			call:    func(svc *Service) error { _, err := svc.GetTask(ctx, 12); return err },
			generic: "Failed to load task. Please try again.",
		},
		{
			name: "update", method: "Patch", path: "/tasks/12/",
			call:    func(svc *Service) error { _, err := svc.UpdateTask(ctx, 12, UpdateTask{}); return err },
			generic: "Failed to update task. Please try again.",
		},
		{
			name: "delete", method: "Delete", path: "/tasks/12/",
			call:    func(svc *Service) error { return svc.DeleteTask(ctx, 12) },
			generic: "Failed to delete task. Please try again.",
		},
		{
			name: "complete", method: "Post", path: "/tasks/12/complete/",
			call:    func(svc *Service) error { _, err := svc.CompleteTask(ctx, 12); return err },
			generic: "Failed to complete task. Please try again.",
		},
	}
	failures := []struct {
		name    string
		err     error
		wantMsg string // empty: the call's generic message
	}{
		{name: "not found", err: transporttest.HTTPError(http.StatusNotFound, `{"detail": "Not found."}`), wantMsg: "Task not found."},
		{name: "forbidden", err: transporttest.HTTPError(http.StatusForbidden, ""), wantMsg: transport.MsgForbidden},
		{name: "server", err: transporttest.HTTPError(http.StatusServiceUnavailable, ""), wantMsg: transport.MsgServer},
		{name: "network", err: transporttest.NetworkError(), wantMsg: transport.MsgNetwork},
		{name: "conflict", err: transporttest.HTTPError(http.StatusConflict, "")},
	}
	for _, c := range calls {
		for _, f := range failures {
			t.Run(c.name+"/"+f.name, func(t *testing.T) {
				client := new(transporttest.Requester)
				args := []interface{}{mock.Anything, c.path}
				if c.method != "Delete" {
					args = append(args, mock.Anything)
				}
				client.On(c.method, args...).Return(nil, f.err)

				want := f.wantMsg
				if want == "" {
					want = c.generic
				}
				assert.EqualError(t, c.call(NewService(client)), want)
				client.AssertExpectations(t)
			})
		}
	}
}

func TestService_CreateTask(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		client := new(transporttest.Requester)
		client.On("Post", mock.Anything, "/tasks/", mock.MatchedBy(func(nt NewTask) bool {
			return nt.Title == "Prepare lesson plan" && nt.Priority == PriorityHigh
		})).Return(transporttest.JSON(taskJSON), nil)

		task, err := NewService(client).CreateTask(context.Background(), NewTask{Title: " Prepare lesson plan ", Priority: PriorityHigh, IsUrgent: true})
		require.NoError(t, err)
		assert.Equal(t, 12, task.ID)
		assert.True(t, task.DueDate.Valid)
		assert.False(t, task.CompletedAt.Valid)
		assert.True(t, task.IsOverdue(time.Date(2024, 10, 2, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("invalid", func(t *testing.T) {
		client := new(transporttest.Requester)
		_, err := NewService(client).CreateTask(context.Background(), NewTask{Title: "", Priority: "urgent"})
		require.True(t, core.IsValidationError(err))
		fields := err.(*core.ValidationError).FieldMap()
		assert.Equal(t, "this field is required", fields["title"])
		assert.Contains(t, fields, "priority")
	})

	t.Run("server validation", func(t *testing.T) {
		client := new(transporttest.Requester)
		client.On("Post", mock.Anything, "/tasks/", mock.Anything).
			Return(nil, transporttest.HTTPError(http.StatusBadRequest, `{"detail": "Due date cannot be in the past."}`))
		_, err := NewService(client).CreateTask(context.Background(), NewTask{Title: "x"})
		assert.EqualError(t, err, "Due date cannot be in the past.")
	})
}

func TestService_CompleteTask(t *testing.T) {
	client := new(transporttest.Requester)
	client.On("Post", mock.Anything, "/tasks/12/complete/", nil).
		Return(transporttest.JSON(`{"id": 12, "status": "completed", "completed_at": "2024-09-21T10:00:00Z"}`), nil)

	task, err := NewService(client).CompleteTask(context.Background(), 12)
	require.NoError(t, err)
	assert.True(t, task.IsCompleted())
	assert.False(t, task.IsOverdue(time.Now()))
}

func TestService_collectionNotFound(t *testing.T) {
	ctx := context.Background()
	notFound := transporttest.HTTPError(http.StatusNotFound, "")
	client := new(transporttest.Requester)
	client.On("Get", mock.Anything, "/tasks/", mock.Anything).Return(nil, notFound)
	client.On("Post", mock.Anything, "/tasks/", mock.Anything).Return(nil, notFound)
	svc := NewService(client)

	_, err := svc.ListTasks(ctx, QueryFilter{})
	assert.EqualError(t, err, "Tasks not found.")
	_, err = svc.CreateTask(ctx, NewTask{Title: "Prepare lesson plan"})
	assert.EqualError(t, err, "Tasks not found.")
}
