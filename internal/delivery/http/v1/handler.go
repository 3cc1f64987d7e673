package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskflow/internal/auth"
	"github.com/adanyl0v/taskflow/internal/services"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleCreateCategory(c *gin.Context)
	HandleListCategories(c *gin.Context)
	HandleGetCategory(c *gin.Context)
	HandleUpdateCategory(c *gin.Context)
	HandleDeleteCategory(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleListTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
}

type handlerImpl struct {
	logger     zerolog.Logger
	tokens     *auth.TokenService
	auth       services.AuthService
	users      services.UserService
	categories services.CategoryService
	tasks      services.TaskService
}

func New(
	logger zerolog.Logger,
	tokens *auth.TokenService,
	authService services.AuthService,
	userService services.UserService,
	categoryService services.CategoryService,
	taskService services.TaskService,
) Handler {
	return &handlerImpl{
		logger:     logger,
		tokens:     tokens,
		auth:       authService,
		users:      userService,
		categories: categoryService,
		tasks:      taskService,
	}
}
