package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/taskloom/taskloom-api/internal/constants"
	"github.com/taskloom/taskloom-api/internal/models"
	"github.com/taskloom/taskloom-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrNotTaskOwner = errors.New("not authorized to access this task")
)

// ValidationError carries field-level validation messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// allowedSortFields maps the accepted sortBy values to SQL order clauses.
// Anything else falls back to the default newest-created-first ordering.
var allowedSortFields = map[string]string{
	"startTime":  "tasks.start_time ASC",
	"-startTime": "tasks.start_time DESC",
	"endTime":    "tasks.end_time ASC",
	"-endTime":   "tasks.end_time DESC",
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
	}
}

// CreateTaskInput represents input for creating a task. Times arrive as raw
// strings so that unparseable values surface as field errors.
type CreateTaskInput struct {
	Title     string
	StartTime string
	EndTime   string
	Priority  *int
	Status    string
	OwnerID   uint64
}

// UpdateTaskInput represents input for updating a task. Only non-nil fields
// are applied.
type UpdateTaskInput struct {
	Title     *string
	StartTime *time.Time
	EndTime   *time.Time
	Priority  *int
	Status    *models.TaskStatus
}

// ListTasksInput represents filters for listing tasks. Status and Priority are
// raw query values; invalid ones are ignored rather than rejected.
type ListTasksInput struct {
	OwnerID  uint64
	Status   string
	Priority string
	SortBy   string
	Page     int
	PageSize int
}

// CreateTask validates the input and persists a new pending task
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	fields := map[string]string{}

	if input.Title == "" {
		fields["title"] = "Title is required"
	}

	startTime, err := time.Parse(time.RFC3339, input.StartTime)
	if input.StartTime == "" || err != nil {
		fields["startTime"] = "Valid start time is required"
	}

	endTime, err := time.Parse(time.RFC3339, input.EndTime)
	if input.EndTime == "" || err != nil {
		fields["endTime"] = "Valid end time is required"
	} else if _, ok := fields["startTime"]; !ok && endTime.Before(startTime) {
		fields["endTime"] = "End time must be after start time"
	}

	if input.Priority == nil || *input.Priority < constants.MinPriority || *input.Priority > constants.MaxPriority {
		fields["priority"] = "Priority must be between 1 and 5"
	}

	status := models.TaskStatusPending
	if input.Status != "" {
		if !models.ValidStatus(input.Status) {
			fields["status"] = "Status must be either pending or finished"
		} else {
			status = models.TaskStatus(input.Status)
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	task := &models.Task{
		Title:     input.Title,
		StartTime: startTime,
		EndTime:   endTime,
		Priority:  *input.Priority,
		Status:    status,
		OwnerID:   input.OwnerID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetTask returns a task if the actor owns it
func (s *TaskService) GetTask(taskID, actorID uint64) (*models.Task, error) {
	task, err := s.findOwnedTask(taskID, actorID)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies the supplied fields to a task, re-validating the merged
// record. Moving a pending task to finished without an explicit end time
// stamps the end time with the current time.
func (s *TaskService) UpdateTask(taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findOwnedTask(taskID, actorID)
	if err != nil {
		return nil, err
	}

	if input.Status != nil && *input.Status == models.TaskStatusFinished &&
		task.Status == models.TaskStatusPending && input.EndTime == nil {
		now := time.Now()
		task.EndTime = now
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.StartTime != nil {
		task.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		task.EndTime = *input.EndTime
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		task.Status = *input.Status
	}

	if err := validateTask(task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask deletes a task if the actor owns it
func (s *TaskService) DeleteTask(taskID, actorID uint64) error {
	if _, err := s.findOwnedTask(taskID, actorID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// ListTasks returns the actor's tasks matching the filters
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		OwnerID:  input.OwnerID,
		Page:     input.Page,
		PageSize: input.PageSize,
	}

	if models.ValidStatus(input.Status) {
		status := models.TaskStatus(input.Status)
		filter.Status = &status
	}
	if p, err := strconv.Atoi(input.Priority); err == nil &&
		p >= constants.MinPriority && p <= constants.MaxPriority {
		filter.Priority = &p
	}
	if clause, ok := allowedSortFields[input.SortBy]; ok {
		filter.OrderBy = clause
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// CompletedTaskStats summarizes finished tasks.
type CompletedTaskStats struct {
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// PriorityGroupStats aggregates pending tasks sharing a priority.
type PriorityGroupStats struct {
	Priority         int     `json:"priority"`
	Count            int     `json:"count"`
	TimeLapsedHours  float64 `json:"timeLapsedHours"`
	BalanceTimeHours float64 `json:"balanceTimeHours"`
}

// PendingTaskStats summarizes pending tasks grouped by priority.
type PendingTaskStats struct {
	Count      int                  `json:"count"`
	Percentage int                  `json:"percentage"`
	ByPriority []PriorityGroupStats `json:"byPriority"`
}

// TaskStatistics is the aggregate view over one user's tasks.
type TaskStatistics struct {
	TotalTasks                 int                `json:"totalTasks"`
	CompletedTasks             CompletedTaskStats `json:"completedTasks"`
	PendingTasks               PendingTaskStats   `json:"pendingTasks"`
	AverageCompletionTimeHours float64            `json:"averageCompletionTimeHours"`
}

// Statistics computes the aggregate view over the actor's tasks as of now.
// Elapsed and remaining time are clipped at zero per task: a task whose window
// has not started contributes no lapsed time, an overdue task no balance time.
func (s *TaskService) Statistics(ownerID uint64, now time.Time) (*TaskStatistics, error) {
	tasks, err := s.taskRepo.FindAllByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	total := len(tasks)
	completed := 0
	var completionHours float64
	groups := make(map[int]*PriorityGroupStats)

	for _, task := range tasks {
		if task.Status == models.TaskStatusFinished {
			completed++
			completionHours += task.EndTime.Sub(task.StartTime).Hours()
			continue
		}

		group, ok := groups[task.Priority]
		if !ok {
			group = &PriorityGroupStats{Priority: task.Priority}
			groups[task.Priority] = group
		}
		group.Count++
		if now.After(task.StartTime) {
			group.TimeLapsedHours += now.Sub(task.StartTime).Hours()
		}
		if task.EndTime.After(now) {
			group.BalanceTimeHours += task.EndTime.Sub(now).Hours()
		}
	}

	byPriority := make([]PriorityGroupStats, 0, len(groups))
	for _, group := range groups {
		group.TimeLapsedHours = round2(group.TimeLapsedHours)
		group.BalanceTimeHours = round2(group.BalanceTimeHours)
		byPriority = append(byPriority, *group)
	}
	sort.Slice(byPriority, func(i, j int) bool {
		return byPriority[i].Priority < byPriority[j].Priority
	})

	stats := &TaskStatistics{
		TotalTasks: total,
		CompletedTasks: CompletedTaskStats{
			Count:      completed,
			Percentage: percentage(completed, total),
		},
		PendingTasks: PendingTaskStats{
			Count:      total - completed,
			Percentage: percentage(total-completed, total),
			ByPriority: byPriority,
		},
	}

	if completed > 0 {
		stats.AverageCompletionTimeHours = round2(completionHours / float64(completed))
	}

	return stats, nil
}

// findOwnedTask loads a task and enforces ownership
func (s *TaskService) findOwnedTask(taskID, actorID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.OwnerID != actorID {
		return nil, ErrNotTaskOwner
	}

	return task, nil
}

// validateTask checks the invariants of a merged task record
func validateTask(task *models.Task) error {
	fields := map[string]string{}

	if task.Title == "" {
		fields["title"] = "Title is required"
	}
	if task.EndTime.Before(task.StartTime) {
		fields["endTime"] = "End time must be after start time"
	}
	if task.Priority < constants.MinPriority || task.Priority > constants.MaxPriority {
		fields["priority"] = "Priority must be between 1 and 5"
	}
	if !models.ValidStatus(string(task.Status)) {
		fields["status"] = "Status must be either pending or finished"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
