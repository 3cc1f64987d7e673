package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskflow/internal/models"
	"github.com/adanyl0v/taskflow/internal/services"
)

type taskCategoryResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

type taskResponse struct {
	ID          string                `json:"id"`
	UserID      string                `json:"user_id"`
	CategoryID  *string               `json:"category_id"`
	Title       string                `json:"title"`
	Description *string               `json:"description"`
	Status      string                `json:"status"`
	Priority    string                `json:"priority"`
	DueDate     *time.Time            `json:"due_date"`
	Category    *taskCategoryResponse `json:"category"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

func newTaskResponse(task *models.Task) taskResponse {
	resp := taskResponse{
		ID:          task.ID,
		UserID:      task.UserID,
		CategoryID:  task.CategoryID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.Category != nil {
		resp.Category = &taskCategoryResponse{
			ID:    task.Category.ID,
			Name:  task.Category.Name,
			Color: task.Category.Color,
		}
	}
	return resp
}

type paginationResponse struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

type taskListResponse struct {
	Tasks      []taskResponse     `json:"tasks"`
	Pagination paginationResponse `json:"pagination"`
}

type createTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=255"`
	Description *string    `json:"description"`
	Status      string     `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS COMPLETED"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	DueDate     *time.Time `json:"due_date"`
	CategoryID  *string    `json:"category_id" binding:"omitempty,uuid"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError("authentication required"))
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newValidationError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.Create(c, services.CreateTaskParams{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abortResourceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

type listTasksQuery struct {
	Page       int    `form:"page,default=1" binding:"min=1"`
	Limit      int    `form:"limit,default=20" binding:"min=1,max=100"`
	Status     string `form:"status" binding:"omitempty,oneof=TODO IN_PROGRESS COMPLETED"`
	Priority   string `form:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	SortBy     string `form:"sort_by,default=created_at" binding:"oneof=created_at due_date priority"`
	Order      string `form:"order,default=desc" binding:"oneof=asc desc"`
	Search     string `form:"search"`
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError("authentication required"))
		return
	}

	var query listTasksQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind query")
		abort(c, newValidationError("invalid query parameters"))
		return
	}

	page, err := h.tasks.List(c, services.ListTasksParams{
		UserID:     userID,
		Page:       query.Page,
		Limit:      query.Limit,
		Status:     query.Status,
		Priority:   query.Priority,
		CategoryID: query.CategoryID,
		Search:     query.Search,
		SortBy:     query.SortBy,
		Order:      query.Order,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abortInternal(c)
		return
	}

	response := taskListResponse{
		Tasks: make([]taskResponse, len(page.Tasks)),
		Pagination: paginationResponse{
			CurrentPage:  page.CurrentPage,
			TotalPages:   page.TotalPages,
			TotalItems:   page.TotalItems,
			ItemsPerPage: page.ItemsPerPage,
		},
	}
	for i := range page.Tasks {
		response.Tasks[i] = newTaskResponse(&page.Tasks[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError("authentication required"))
		return
	}

	taskID, ok := pathID(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetByID(c, taskID, userID)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to get task")
		abortResourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

type updateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS COMPLETED"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	DueDate     *time.Time `json:"due_date"`
	CategoryID  *string    `json:"category_id" binding:"omitempty,uuid"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError("authentication required"))
		return
	}

	taskID, ok := pathID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newValidationError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.Update(c, services.UpdateTaskParams{
		TaskID:      taskID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		abortResourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError("authentication required"))
		return
	}

	taskID, ok := pathID(c)
	if !ok {
		return
	}

	err := h.tasks.Delete(c, taskID, userID)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		abortResourceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
