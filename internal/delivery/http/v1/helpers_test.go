package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskflow/internal/auth"
	"github.com/adanyl0v/taskflow/internal/models"
	"github.com/adanyl0v/taskflow/internal/services"
)

const testUserID = "0190a8b0-0000-7000-8000-000000000001"

func testTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService("taskflow-test", "test_signing_key_1234567890", "HS256",
		15*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return tokens
}

type stubAuthService struct {
	registerFn func(params services.RegisterParams) (*models.User, error)
	loginFn    func(params services.LoginParams) (*services.LoginResult, error)
	refreshFn  func(refreshToken string) (*services.RefreshResult, error)
}

func (s *stubAuthService) Register(_ context.Context, params services.RegisterParams) (*models.User, error) {
	return s.registerFn(params)
}

func (s *stubAuthService) Login(_ context.Context, params services.LoginParams) (*services.LoginResult, error) {
	return s.loginFn(params)
}

func (s *stubAuthService) Refresh(_ context.Context, refreshToken string) (*services.RefreshResult, error) {
	return s.refreshFn(refreshToken)
}

type stubUserService struct {
	getFn func(userID string) (*models.User, error)
}

func (s *stubUserService) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	return s.getFn(userID)
}

type stubCategoryService struct {
	createFn func(params services.CreateCategoryParams) (*models.Category, error)
	listFn   func(userID string) ([]models.Category, error)
	getFn    func(categoryID, userID string) (*models.Category, error)
	updateFn func(params services.UpdateCategoryParams) (*models.Category, error)
	deleteFn func(categoryID, userID string) error
}

func (s *stubCategoryService) Create(_ context.Context, params services.CreateCategoryParams) (*models.Category, error) {
	return s.createFn(params)
}

func (s *stubCategoryService) List(_ context.Context, userID string) ([]models.Category, error) {
	return s.listFn(userID)
}

func (s *stubCategoryService) GetByID(_ context.Context, categoryID, userID string) (*models.Category, error) {
	return s.getFn(categoryID, userID)
}

func (s *stubCategoryService) Update(_ context.Context, params services.UpdateCategoryParams) (*models.Category, error) {
	return s.updateFn(params)
}

func (s *stubCategoryService) Delete(_ context.Context, categoryID, userID string) error {
	return s.deleteFn(categoryID, userID)
}

type stubTaskService struct {
	createFn func(params services.CreateTaskParams) (*models.Task, error)
	listFn   func(params services.ListTasksParams) (*services.TaskPage, error)
	getFn    func(taskID, userID string) (*models.Task, error)
	updateFn func(params services.UpdateTaskParams) (*models.Task, error)
	deleteFn func(taskID, userID string) error
}

func (s *stubTaskService) Create(_ context.Context, params services.CreateTaskParams) (*models.Task, error) {
	return s.createFn(params)
}

func (s *stubTaskService) List(_ context.Context, params services.ListTasksParams) (*services.TaskPage, error) {
	return s.listFn(params)
}

func (s *stubTaskService) GetByID(_ context.Context, taskID, userID string) (*models.Task, error) {
	return s.getFn(taskID, userID)
}

func (s *stubTaskService) Update(_ context.Context, params services.UpdateTaskParams) (*models.Task, error) {
	return s.updateFn(params)
}

func (s *stubTaskService) Delete(_ context.Context, taskID, userID string) error {
	return s.deleteFn(taskID, userID)
}

type handlerStubs struct {
	auth       services.AuthService
	users      services.UserService
	categories services.CategoryService
	tasks      services.TaskService
}

func newTestHandler(t *testing.T, stubs handlerStubs) Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return New(zerolog.Nop(), testTokenService(t), stubs.auth, stubs.users, stubs.categories, stubs.tasks)
}

// withTestUserID injects an authenticated user, bypassing the auth
// middleware for handler tests.
func withTestUserID(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(userIDCtxKey, userID)
		c.Next()
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	return out
}

func mustStatus(t *testing.T, resp *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if resp.Code != expected {
		t.Fatalf("expected status %d, got %d (body %s)", expected, resp.Code, resp.Body.String())
	}
}

func strPtr(s string) *string {
	return &s
}
