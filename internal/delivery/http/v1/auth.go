package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskflow/internal/models"
	"github.com/adanyl0v/taskflow/internal/services"
)

type registerRequest struct {
	Username  string  `json:"username" binding:"required,min=3,max=50"`
	Email     string  `json:"email" binding:"required,email,max=255"`
	Password  string  `json:"password" binding:"required,min=8,max=100"`
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req registerRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newValidationError(errInvalidRequestBody.Error()))
		return
	}

	user, err := h.auth.Register(c, services.RegisterParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to register user")
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			abort(c, newConflictError(services.ErrUsernameTaken.Error()))
		case errors.Is(err, services.ErrEmailTaken):
			abort(c, newConflictError(services.ErrEmailTaken.Error()))
		default:
			abortInternal(c)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"userId":  user.ID,
		"email":   user.Email,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=255"`
}

type loginUserResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type loginResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	TokenType    string            `json:"token_type"`
	ExpiresIn    int               `json:"expires_in"`
	User         loginUserResponse `json:"user"`
}

func newLoginUserResponse(user *models.User) loginUserResponse {
	return loginUserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req loginRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newValidationError(errInvalidRequestBody.Error()))
		return
	}

	result, err := h.auth.Login(c, services.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to login")
		if errors.Is(err, services.ErrUserPasswordMismatch) {
			abort(c, newUnauthorizedError(services.ErrUserPasswordMismatch.Error()))
		} else {
			abortInternal(c)
		}
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    result.ExpiresIn,
		User:         newLoginUserResponse(result.User),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *handlerImpl) HandleRefresh(c *gin.Context) {
	var req refreshRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newValidationError(errInvalidRequestBody.Error()))
		return
	}

	result, err := h.auth.Refresh(c, req.RefreshToken)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to refresh access token")
		if errors.Is(err, services.ErrInvalidRefreshToken) {
			abort(c, newUnauthorizedError(services.ErrInvalidRefreshToken.Error()))
		} else {
			abortInternal(c)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": result.AccessToken,
		"tokenType":   "Bearer",
		"expiresIn":   result.ExpiresIn,
	})
}

// HandleLogout has no server-side effect: tokens are stateless and
// the client discards them.
func (h *handlerImpl) HandleLogout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged out",
	})
}
