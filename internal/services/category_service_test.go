package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
)

func newCategoryServiceForTest(t *testing.T) (CategoryService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	return NewCategoryService(zerolog.Nop(), mock), mock
}

func categoryRows(userID string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.
		NewRows([]string{"user_id", "name", "color", "description", "created_at", "updated_at"}).
		AddRow(userID, "Work", nil, nil, now, now)
}

func TestCreateCategorySuccess(t *testing.T) {
	svc, mock := newCategoryServiceForTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectCategoryByNameQuery)).
		WithArgs("user-1", "Work").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categories")).
		WithArgs(pgxmock.AnyArg(), "user-1", "Work", pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	category, err := svc.Create(context.Background(), CreateCategoryParams{
		UserID: "user-1",
		Name:   "Work",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if category.ID == "" {
		t.Fatal("expected a generated category id")
	}

	if err = mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCreateCategoryNameTaken(t *testing.T) {
	svc, mock := newCategoryServiceForTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectCategoryByNameQuery)).
		WithArgs("user-1", "Work").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("existing-id"))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), CreateCategoryParams{
		UserID: "user-1",
		Name:   "Work",
	})
	if !errors.Is(err, ErrCategoryNameTaken) {
		t.Fatalf("expected ErrCategoryNameTaken, got %v", err)
	}
}

func TestGetCategoryNotFound(t *testing.T) {
	svc, mock := newCategoryServiceForTest(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectCategoryByIDQuery)).
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(context.Background(), "missing-id", "user-1")
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestGetCategoryForbidden(t *testing.T) {
	svc, mock := newCategoryServiceForTest(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectCategoryByIDQuery)).
		WithArgs("category-1").
		WillReturnRows(categoryRows("owner-user"))

	// The resource exists, so a foreign requester sees forbidden,
	// not a masked not-found.
	_, err := svc.GetByID(context.Background(), "category-1", "other-user")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUpdateCategoryRenameConflict(t *testing.T) {
	svc, mock := newCategoryServiceForTest(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectCategoryByIDQuery)).
		WithArgs("category-1").
		WillReturnRows(categoryRows("user-1"))
	mock.ExpectQuery(regexp.QuoteMeta(selectCategoryByNameQuery)).
		WithArgs("user-1", "Personal").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("other-category"))

	name := "Personal"
	_, err := svc.Update(context.Background(), UpdateCategoryParams{
		CategoryID: "category-1",
		UserID:     "user-1",
		Name:       &name,
	})
	if !errors.Is(err, ErrCategoryNameTaken) {
		t.Fatalf("expected ErrCategoryNameTaken, got %v", err)
	}
}

func TestUpdateCategoryRenameToSameNameIsNoConflict(t *testing.T) {
	svc, mock := newCategoryServiceForTest(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectCategoryByIDQuery)).
		WithArgs("category-1").
		WillReturnRows(categoryRows("user-1"))
	// No uniqueness probe expected: the name is unchanged.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE categories")).
		WithArgs("Work", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "category-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	name := "Work"
	category, err := svc.Update(context.Background(), UpdateCategoryParams{
		CategoryID: "category-1",
		UserID:     "user-1",
		Name:       &name,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if category.Name != "Work" {
		t.Fatalf("expected name Work, got %q", category.Name)
	}

	if err = mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestDeleteCategoryDetachesTasks(t *testing.T) {
	svc, mock := newCategoryServiceForTest(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectCategoryByIDQuery)).
		WithArgs("category-1").
		WillReturnRows(categoryRows("user-1"))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks\nSET category_id = NULL\nWHERE category_id = $1")).
		WithArgs("category-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories")).
		WithArgs("category-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := svc.Delete(context.Background(), "category-1", "user-1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if err = mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestDeleteCategoryForbidden(t *testing.T) {
	svc, mock := newCategoryServiceForTest(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectCategoryByIDQuery)).
		WithArgs("category-1").
		WillReturnRows(categoryRows("owner-user"))

	err := svc.Delete(context.Background(), "category-1", "other-user")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
