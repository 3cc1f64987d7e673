package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adanyl0v/taskflow/internal/models"
	"github.com/adanyl0v/taskflow/internal/services"
)

type categoryResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Color       *string   `json:"color"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newCategoryResponse(category *models.Category) categoryResponse {
	return categoryResponse{
		ID:          category.ID,
		UserID:      category.UserID,
		Name:        category.Name,
		Color:       category.Color,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

type createCategoryRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Color       *string `json:"color" binding:"omitempty,hexcolor,len=7"`
	Description *string `json:"description"`
}

func (h *handlerImpl) HandleCreateCategory(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError("authentication required"))
		return
	}

	var req createCategoryRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newValidationError(errInvalidRequestBody.Error()))
		return
	}

	category, err := h.categories.Create(c, services.CreateCategoryParams{
		UserID:      userID,
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create category")
		abortResourceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newCategoryResponse(category))
}

func (h *handlerImpl) HandleListCategories(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError("authentication required"))
		return
	}

	categories, err := h.categories.List(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list categories")
		abortInternal(c)
		return
	}

	response := make([]categoryResponse, len(categories))
	for i := range categories {
		response[i] = newCategoryResponse(&categories[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleGetCategory(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError("authentication required"))
		return
	}

	categoryID, ok := pathID(c)
	if !ok {
		return
	}

	category, err := h.categories.GetByID(c, categoryID, userID)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("category_id", categoryID).
			Msg("failed to get category")
		abortResourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newCategoryResponse(category))
}

type updateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Color       *string `json:"color" binding:"omitempty,hexcolor,len=7"`
	Description *string `json:"description"`
}

func (h *handlerImpl) HandleUpdateCategory(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError("authentication required"))
		return
	}

	categoryID, ok := pathID(c)
	if !ok {
		return
	}

	var req updateCategoryRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newValidationError(errInvalidRequestBody.Error()))
		return
	}

	category, err := h.categories.Update(c, services.UpdateCategoryParams{
		CategoryID:  categoryID,
		UserID:      userID,
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("category_id", categoryID).
			Msg("failed to update category")
		abortResourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newCategoryResponse(category))
}

func (h *handlerImpl) HandleDeleteCategory(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newUnauthorizedError("authentication required"))
		return
	}

	categoryID, ok := pathID(c)
	if !ok {
		return
	}

	err := h.categories.Delete(c, categoryID, userID)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("category_id", categoryID).
			Msg("failed to delete category")
		abortResourceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// pathID validates the :id route parameter. A malformed ID is a
// validation failure, not a missing resource.
func pathID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		abort(c, newValidationError("invalid resource id"))
		return "", false
	}
	return id, true
}
