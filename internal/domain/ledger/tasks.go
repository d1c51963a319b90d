package ledger

import (
	"strings"
	"time"
)

func (s *Store) CreateTask(in NewTask) (Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Task{}, invalid("title", "is required")
	}
	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return Task{}, invalid("priority", "must be one of Low, Medium, High")
	}

	t := &Task{
		ID:         s.newID(),
		Title:      title,
		AssigneeID: strings.TrimSpace(in.AssigneeID),
		Priority:   priority,
		Status:     StatusPending,
		DueDate:    copyTime(in.DueDate),
		Comments:   in.Comments,
		Attachment: in.Attachment,
		CreatedAt:  s.now(),
	}
	if t.DueDate != nil {
		day := DayOf(*t.DueDate)
		t.DueDate = &day
	}
	s.tasks[t.ID] = t
	s.taskOrder = append(s.taskOrder, t.ID)
	if e, ok := s.employees[t.AssigneeID]; ok {
		e.TaskIDs = append(e.TaskIDs, t.ID)
	}
	return t.clone(), nil
}

// AssignTask moves a task to a new assignee, keeping both employees' task
// lists consistent with the task's assignee reference.
func (s *Store) AssignTask(taskID, employeeID string) (Task, error) {
	t, ok := s.tasks[taskID]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	e, ok := s.employees[employeeID]
	if !ok {
		return Task{}, ErrEmployeeNotFound
	}
	if previous, ok := s.employees[t.AssigneeID]; ok && t.AssigneeID != employeeID {
		previous.TaskIDs = removeID(previous.TaskIDs, taskID)
	}
	t.AssigneeID = employeeID
	e.TaskIDs = appendUnique(e.TaskIDs, taskID)
	return t.clone(), nil
}

// UpdateTaskProgress clamps percent to [0,100] and re-derives the status.
// A non-empty note is appended to the task's update log.
func (s *Store) UpdateTaskProgress(taskID string, percent int, note string) (Task, error) {
	t, ok := s.tasks[taskID]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	t.ProgressPercent = ClampProgress(percent)
	t.Status = StatusForProgress(t.ProgressPercent)
	if note = strings.TrimSpace(note); note != "" {
		t.Updates = append(t.Updates, Note{At: s.now(), Text: note})
	}
	return t.clone(), nil
}

// Overdue reports whether an unfinished task's due date lies strictly
// before day.
func (t Task) Overdue(day time.Time) bool {
	if t.Status == StatusCompleted || t.DueDate == nil {
		return false
	}
	return DayOf(*t.DueDate).Before(DayOf(day))
}
