package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/adanyl0v/taskflow/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUsernameTaken        = errors.New("username already registered")
	ErrEmailTaken           = errors.New("email already registered")
	ErrUserPasswordMismatch = errors.New("incorrect email or password")

	// ErrForbidden means the resource exists but belongs to another
	// user. Reported only after the existence check, so a missing
	// resource is always "not found", never "forbidden".
	ErrForbidden = errors.New("not enough permissions")

	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryNameTaken = errors.New("category with this name already exists")
	ErrTaskNotFound      = errors.New("task not found")

	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// DB is the slice of pgxpool.Pool the services use. Narrowing it to
// an interface lets tests substitute a pgxmock pool.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type AuthService interface {
	// Register creates a user with a hashed password.
	//
	// It returns ErrUsernameTaken or ErrEmailTaken if another user
	// already claimed the username or email. The pre-checks run in
	// the same transaction as the insert; the unique constraints
	// remain the correctness guarantee under concurrent registration.
	Register(ctx context.Context, params RegisterParams) (*models.User, error)

	// Login authenticates the user by email and password and issues
	// a fresh access/refresh token pair.
	//
	// It returns ErrUserPasswordMismatch for an unknown email as
	// well as a wrong password, so the two are indistinguishable.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh mints a new access token from a valid refresh token.
	// Tokens of any other type are rejected with ErrInvalidRefreshToken.
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
}

type UserService interface {
	// GetUserByID loads a user by ID. It returns ErrUserNotFound for
	// an unknown ID, which also covers accounts deleted after a
	// still-valid token was issued.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

type CategoryService interface {
	Create(ctx context.Context, params CreateCategoryParams) (*models.Category, error)
	List(ctx context.Context, userID string) ([]models.Category, error)
	GetByID(ctx context.Context, categoryID, userID string) (*models.Category, error)
	Update(ctx context.Context, params UpdateCategoryParams) (*models.Category, error)

	// Delete removes the category and nulls out the category
	// reference of every task that pointed at it, in one
	// transaction. The tasks themselves survive.
	Delete(ctx context.Context, categoryID, userID string) error
}

type TaskService interface {
	Create(ctx context.Context, params CreateTaskParams) (*models.Task, error)
	List(ctx context.Context, params ListTasksParams) (*TaskPage, error)
	GetByID(ctx context.Context, taskID, userID string) (*models.Task, error)
	Update(ctx context.Context, params UpdateTaskParams) (*models.Task, error)
	Delete(ctx context.Context, taskID, userID string) error
}

type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

type LoginParams struct {
	Email    string
	Password string
}

type LoginResult struct {
	User                 *models.User
	AccessToken          string
	AccessTokenExpiresAt time.Time
	RefreshToken         string
	ExpiresIn            int
}

type RefreshResult struct {
	AccessToken string
	ExpiresIn   int
}

type CreateCategoryParams struct {
	UserID      string
	Name        string
	Color       *string
	Description *string
}

type UpdateCategoryParams struct {
	CategoryID  string
	UserID      string
	Name        *string
	Color       *string
	Description *string
}

type CreateTaskParams struct {
	UserID      string
	Title       string
	Description *string
	Status      string
	Priority    string
	DueDate     *time.Time
	CategoryID  *string
}

type UpdateTaskParams struct {
	TaskID      string
	UserID      string
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	CategoryID  *string
}

type ListTasksParams struct {
	UserID     string
	Page       int
	Limit      int
	Status     string
	Priority   string
	CategoryID string
	Search     string
	SortBy     string
	Order      string
}

type TaskPage struct {
	Tasks        []models.Task
	CurrentPage  int
	TotalPages   int
	TotalItems   int
	ItemsPerPage int
}
