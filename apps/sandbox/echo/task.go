package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-client/core/task"
)

func (api *sandboxAPI) listTasks(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	filter := taskFilter{
		Status:   ctx.QueryParam("status"),
		Priority: ctx.QueryParam("priority"),
		TaskType: ctx.QueryParam("task_type"),
		IsUrgent: queryBool(ctx, "is_urgent"),
	}
	tasks := api.store.tasksOf(acc.profile.ID, filter)
	if due := queryTime(ctx, "due_date__lte"); !due.IsZero() {
		kept := tasks[:0]
		for _, t := range tasks {
			if t.DueDate.Valid && !t.DueDate.Time.After(due) {
				kept = append(kept, t)
			}
		}
		tasks = kept
	}
	return paginated(ctx, tasks)
}

func (api *sandboxAPI) createTask(ctx echo.Context) error {
	acc, err := contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, api.store.createTask(acc.profile.ID, data))
}

func (api *sandboxAPI) retrieveTask(ctx echo.Context) error {
	acc, id, err := api.taskRequest(ctx)
	if err != nil {
		return err
	}
	t, ok := api.store.task(acc.profile.ID, id)
	if !ok {
		return errNotFound
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *sandboxAPI) updateTask(ctx echo.Context) error {
	acc, id, err := api.taskRequest(ctx)
	if err != nil {
		return err
	}
	var data task.UpdateTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	t, ok := api.store.updateTask(acc.profile.ID, id, data)
	if !ok {
		return errNotFound
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *sandboxAPI) deleteTask(ctx echo.Context) error {
	acc, id, err := api.taskRequest(ctx)
	if err != nil {
		return err
	}
	if !api.store.deleteTask(acc.profile.ID, id) {
		return errNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sandboxAPI) completeTask(ctx echo.Context) error {
	acc, id, err := api.taskRequest(ctx)
	if err != nil {
		return err
	}
	t, ok := api.store.completeTask(acc.profile.ID, id)
	if !ok {
		return errNotFound
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *sandboxAPI) taskRequest(ctx echo.Context) (account, int, error) {
	acc, err := contextAccount(ctx)
	if err != nil {
		return account{}, 0, errors.Wrap(err, "getting context account")
	}
	id, err := pathID(ctx)
	return acc, id, err
}
