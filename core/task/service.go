package task

import (
	"context"
	"strconv"

	"github.com/trezcool/masomo-client/core"
	"github.com/trezcool/masomo-client/core/transport"
)

const basePath = "/tasks/"

var (
	listMsgs     = transport.Messages{NotFound: "Tasks not found.", Generic: "Failed to load tasks. Please try again."}
	getMsgs      = transport.Messages{NotFound: "Task not found.", Generic: "Failed to load task. Please try again."}
	createMsgs   = transport.Messages{NotFound: "Tasks not found.", Generic: "Failed to create task. Please try again."}
	updateMsgs   = transport.Messages{NotFound: "Task not found.", Generic: "Failed to update task. Please try again."}
	deleteMsgs   = transport.Messages{NotFound: "Task not found.", Generic: "Failed to delete task. Please try again."}
	completeMsgs = transport.Messages{NotFound: "Task not found.", Generic: "Failed to complete task. Please try again."}
)

type Service struct {
	client transport.Requester
}

func NewService(client transport.Requester) *Service {
	return &Service{client: client}
}

func taskPath(id int) string {
	return basePath + strconv.Itoa(id) + "/"
}

func (svc *Service) ListTasks(ctx context.Context, filter QueryFilter) ([]Task, error) {
	if err := core.ValidateStruct(filter); err != nil {
		return nil, err
	}
	resp, err := svc.client.Get(ctx, basePath, filter.Values())
	if err != nil {
		return nil, listMsgs.Translate(err)
	}
	tasks := make([]Task, 0)
	if err := resp.Results(&tasks); err != nil {
		return nil, listMsgs.Translate(err)
	}
	return tasks, nil
}

func (svc *Service) GetTask(ctx context.Context, id int) (*Task, error) {
	resp, err := svc.client.Get(ctx, taskPath(id), nil)
	return decode(resp, err, getMsgs)
}

func (svc *Service) CreateTask(ctx context.Context, nt NewTask) (*Task, error) {
	if err := nt.Validate(); err != nil {
		return nil, err
	}
	resp, err := svc.client.Post(ctx, basePath, nt)
	return decode(resp, err, createMsgs)
}

func (svc *Service) UpdateTask(ctx context.Context, id int, ut UpdateTask) (*Task, error) {
	if err := ut.Validate(); err != nil {
		return nil, err
	}
	resp, err := svc.client.Patch(ctx, taskPath(id), ut)
	return decode(resp, err, updateMsgs)
}

func (svc *Service) DeleteTask(ctx context.Context, id int) error {
	_, err := svc.client.Delete(ctx, taskPath(id))
	return deleteMsgs.Translate(err)
}

func (svc *Service) CompleteTask(ctx context.Context, id int) (*Task, error) {
	resp, err := svc.client.Post(ctx, taskPath(id)+"complete/", nil)
	return decode(resp, err, completeMsgs)
}

func decode(resp *transport.Response, err error, msgs transport.Messages) (*Task, error) {
	if err != nil {
		return nil, msgs.Translate(err)
	}
	var t Task
	if err := resp.JSON(&t); err != nil {
		return nil, msgs.Translate(err)
	}
	return &t, nil
}
