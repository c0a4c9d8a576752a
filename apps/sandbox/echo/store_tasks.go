package echoapi

import (
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-client/core/task"
)

type taskFilter struct {
	Status   string
	Priority string
	TaskType string
	IsUrgent *bool
}

func (s *Store) tasksOf(owner int, f taskFilter) []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]task.Task, 0)
	for _, t := range s.tasks {
		if t.owner != owner {
			continue
		}
		if (f.Status != "" && t.Status != f.Status) ||
			(f.Priority != "" && t.Priority != f.Priority) ||
			(f.TaskType != "" && t.TaskType != f.TaskType) ||
			(f.IsUrgent != nil && t.IsUrgent != *f.IsUrgent) {
			continue
		}
		res = append(res, t.Task)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (s *Store) task(owner, id int) (task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok || t.owner != owner {
		return task.Task{}, false
	}
	return t.Task, true
}

func (s *Store) createTask(owner int, nt task.NewTask) task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	acc := s.accounts[owner]
	t := &ownedTask{owner: owner, Task: task.Task{
		ID:          s.nextPK(),
		Title:       nt.Title,
		Description: nt.Description,
		Status:      task.StatusPending,
		Priority:    nt.Priority,
		TaskType:    nt.TaskType,
		IsUrgent:    nt.IsUrgent,
		DueDate:     null.TimeFromPtr(nt.DueDate),
		CreatedBy:   null.StringFrom(acc.profile.Name),
		CreatedAt:   now,
		UpdatedAt:   now,
	}}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	if t.TaskType == "" {
		t.TaskType = "general"
	}
	s.tasks[t.ID] = t
	s.record(acc, "task_created", acc.profile.Name+" created task "+t.Title)
	return t.Task
}

// updateTask applies ut; ok is false when the task does not belong to owner.
func (s *Store) updateTask(owner, id int, ut task.UpdateTask) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.owner != owner {
		return task.Task{}, false
	}
	if ut.Title != nil {
		t.Title = *ut.Title
	}
	if ut.Description != nil {
		t.Description = *ut.Description
	}
	if ut.Priority != nil {
		t.Priority = *ut.Priority
	}
	if ut.IsUrgent != nil {
		t.IsUrgent = *ut.IsUrgent
	}
	if ut.DueDate != nil {
		t.DueDate = null.TimeFrom(*ut.DueDate)
	}
	if ut.Status != nil {
		s.setStatus(t, *ut.Status)
	}
	t.UpdatedAt = s.now().UTC()
	return t.Task, true
}

// setStatus must be called with mu held.
func (s *Store) setStatus(t *ownedTask, status string) {
	t.Status = status
	if status == task.StatusCompleted {
		if !t.CompletedAt.Valid {
			t.CompletedAt = null.TimeFrom(s.now().UTC())
		}
	} else {
		t.CompletedAt = null.Time{}
	}
}

func (s *Store) completeTask(owner, id int) (task.Task, bool) {
	status := task.StatusCompleted
	return s.updateTask(owner, id, task.UpdateTask{Status: &status})
}

func (s *Store) deleteTask(owner, id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.owner != owner {
		return false
	}
	delete(s.tasks, id)
	return true
}
