package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskflow/internal/models"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// Whitelisted sort keys. The priority column is a Postgres enum, so
// ordering by it follows the declaration order LOW < MEDIUM < HIGH < URGENT.
var taskSortColumns = map[string]string{
	"created_at": "t.created_at",
	"due_date":   "t.due_date",
	"priority":   "t.priority",
}

type taskServiceImpl struct {
	logger zerolog.Logger
	db     DB
}

func NewTaskService(
	logger zerolog.Logger,
	db DB,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		db:     db,
	}
}

const selectTaskByIDQuery = `
SELECT t.user_id,
       t.category_id,
       t.title,
       t.description,
       t.status,
       t.priority,
       t.due_date,
       t.created_at,
       t.updated_at,
       c.name,
       c.color
FROM tasks t
LEFT JOIN categories c ON c.id = t.category_id
WHERE t.id = $1
`

func (s *taskServiceImpl) Create(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	now := time.Now()
	task := models.Task{
		UserID:      params.UserID,
		CategoryID:  params.CategoryID,
		Title:       params.Title,
		Description: params.Description,
		Status:      params.Status,
		Priority:    params.Priority,
		DueDate:     params.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	if task.CategoryID != nil {
		category, err := s.selectOwnedCategory(ctx, *task.CategoryID, task.UserID)
		if err != nil {
			return nil, err
		}
		task.Category = category
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}
	task.ID = taskUUID.String()

	const insertTaskQuery = `
INSERT INTO tasks (id,
                   user_id,
                   category_id,
                   title,
                   description,
                   status,
                   priority,
                   due_date,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	_, err = s.db.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.UserID,
		task.CategoryID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	return &task, nil
}

func (s *taskServiceImpl) List(ctx context.Context, params ListTasksParams) (*TaskPage, error) {
	page := params.Page
	if page < defaultPage {
		page = defaultPage
	}
	limit := params.Limit
	if limit < 1 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	where, args := buildTaskFilters(params)

	countQuery := "SELECT COUNT(*) FROM tasks t WHERE " + where
	var totalItems int
	err := s.db.QueryRow(ctx, countQuery, args...).Scan(&totalItems)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to count tasks")
		return nil, err
	}

	sortColumn, ok := taskSortColumns[params.SortBy]
	if !ok {
		sortColumn = taskSortColumns["created_at"]
	}
	direction := "DESC"
	if strings.EqualFold(params.Order, "asc") {
		direction = "ASC"
	}

	listQuery := fmt.Sprintf(`
SELECT t.id,
       t.category_id,
       t.title,
       t.description,
       t.status,
       t.priority,
       t.due_date,
       t.created_at,
       t.updated_at,
       c.name,
       c.color
FROM tasks t
LEFT JOIN categories c ON c.id = t.category_id
WHERE %s
ORDER BY %s %s
LIMIT $%d OFFSET $%d`,
		where, sortColumn, direction, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.Query(ctx, listQuery, args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task := models.Task{
			UserID: params.UserID,
		}
		var categoryName, categoryColor *string
		err = rows.Scan(
			&task.ID,
			&task.CategoryID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.Priority,
			&task.DueDate,
			&task.CreatedAt,
			&task.UpdatedAt,
			&categoryName,
			&categoryColor,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		attachCategory(&task, categoryName, categoryColor)
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + limit - 1) / limit
	}

	return &TaskPage{
		Tasks:        tasks,
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		ItemsPerPage: limit,
	}, nil
}

func (s *taskServiceImpl) GetByID(ctx context.Context, taskID, userID string) (*models.Task, error) {
	task, err := s.selectTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.UserID != userID {
		s.logger.Warn().
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("task owned by another user")
		return nil, ErrForbidden
	}

	return task, nil
}

func (s *taskServiceImpl) Update(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	task, err := s.selectTask(ctx, params.TaskID)
	if err != nil {
		return nil, err
	}

	if task.UserID != params.UserID {
		s.logger.Warn().
			Str("task_id", params.TaskID).
			Str("user_id", params.UserID).
			Msg("task owned by another user")
		return nil, ErrForbidden
	}

	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = params.Description
	}
	if params.Status != nil {
		task.Status = *params.Status
	}
	if params.Priority != nil {
		task.Priority = *params.Priority
	}
	if params.DueDate != nil {
		task.DueDate = params.DueDate
	}
	if params.CategoryID != nil {
		category, err := s.selectOwnedCategory(ctx, *params.CategoryID, params.UserID)
		if err != nil {
			return nil, err
		}
		task.CategoryID = params.CategoryID
		task.Category = category
	}
	task.UpdatedAt = time.Now()

	const updateTaskQuery = `
UPDATE tasks
SET category_id = $1,
    title = $2,
    description = $3,
    status = $4,
    priority = $5,
    due_date = $6,
    updated_at = $7
WHERE id = $8
`
	_, err = s.db.Exec(
		ctx,
		updateTaskQuery,
		task.CategoryID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, taskID, userID string) error {
	task, err := s.selectTask(ctx, taskID)
	if err != nil {
		return err
	}

	if task.UserID != userID {
		s.logger.Warn().
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("task owned by another user")
		return ErrForbidden
	}

	const deleteTaskQuery = `
DELETE FROM tasks
       WHERE id = $1
`
	_, err = s.db.Exec(
		ctx,
		deleteTaskQuery,
		taskID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) selectTask(ctx context.Context, taskID string) (*models.Task, error) {
	task := &models.Task{
		ID: taskID,
	}

	var categoryName, categoryColor *string
	err := s.db.QueryRow(
		ctx,
		selectTaskByIDQuery,
		task.ID,
	).Scan(
		&task.UserID,
		&task.CategoryID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
		&categoryName,
		&categoryColor,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("task_id", task.ID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to select task by id")
		return nil, err
	}

	attachCategory(task, categoryName, categoryColor)
	return task, nil
}

// selectOwnedCategory validates a category reference on task create
// and update: the category must exist and belong to the acting user.
func (s *taskServiceImpl) selectOwnedCategory(ctx context.Context, categoryID, userID string) (*models.Category, error) {
	category := &models.Category{
		ID: categoryID,
	}

	const selectCategoryQuery = `
SELECT user_id,
       name,
       color
FROM categories
WHERE id = $1
`
	err := s.db.QueryRow(
		ctx,
		selectCategoryQuery,
		category.ID,
	).Scan(
		&category.UserID,
		&category.Name,
		&category.Color,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("category_id", category.ID).
				Msg("category not found")
			return nil, ErrCategoryNotFound
		}

		s.logger.Error().
			Err(err).
			Str("category_id", category.ID).
			Msg("failed to select category by id")
		return nil, err
	}

	if category.UserID != userID {
		s.logger.Warn().
			Str("category_id", category.ID).
			Str("user_id", userID).
			Msg("category owned by another user")
		return nil, ErrForbidden
	}

	return category, nil
}

func buildTaskFilters(params ListTasksParams) (string, []any) {
	clauses := []string{"t.user_id = $1"}
	args := []any{params.UserID}

	if params.Status != "" {
		args = append(args, params.Status)
		clauses = append(clauses, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if params.Priority != "" {
		args = append(args, params.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority = $%d", len(args)))
	}
	if params.CategoryID != "" {
		args = append(args, params.CategoryID)
		clauses = append(clauses, fmt.Sprintf("t.category_id = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(t.title ILIKE $%d OR t.description ILIKE $%d)", len(args), len(args)))
	}

	return strings.Join(clauses, " AND "), args
}

func attachCategory(task *models.Task, name, color *string) {
	if task.CategoryID == nil || name == nil {
		return
	}
	task.Category = &models.Category{
		ID:     *task.CategoryID,
		UserID: task.UserID,
		Name:   *name,
		Color:  color,
	}
}
