package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskflow/internal/models"
)

type categoryServiceImpl struct {
	logger zerolog.Logger
	db     DB
}

func NewCategoryService(
	logger zerolog.Logger,
	db DB,
) CategoryService {
	return &categoryServiceImpl{
		logger: logger,
		db:     db,
	}
}

const selectCategoryByIDQuery = `
SELECT user_id,
       name,
       color,
       description,
       created_at,
       updated_at
FROM categories
WHERE id = $1
`

const selectCategoryByNameQuery = `
SELECT id
FROM categories
WHERE user_id = $1 AND
      name = $2
`

func (s *categoryServiceImpl) Create(ctx context.Context, params CreateCategoryParams) (*models.Category, error) {
	now := time.Now()
	category := models.Category{
		UserID:      params.UserID,
		Name:        params.Name,
		Color:       params.Color,
		Description: params.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	categoryUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate category uuid")
		return nil, err
	}
	category.ID = categoryUUID.String()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Attributable conflict message; the unique constraint is still
	// what settles two concurrent creates racing on the same name.
	var existingID string
	err = tx.QueryRow(
		ctx,
		selectCategoryByNameQuery,
		category.UserID,
		category.Name,
	).Scan(&existingID)
	if err == nil {
		s.logger.Warn().
			Str("user_id", category.UserID).
			Str("name", category.Name).
			Msg("category name already taken")
		return nil, ErrCategoryNameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Error().
			Err(err).
			Msg("failed to select category by name")
		return nil, err
	}

	const insertCategoryQuery = `
INSERT INTO categories (id,
                        user_id,
                        name,
                        color,
                        description,
                        created_at,
                        updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err = tx.Exec(
		ctx,
		insertCategoryQuery,
		category.ID,
		category.UserID,
		category.Name,
		category.Color,
		category.Description,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrCategoryNameTaken
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert category")
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}

	s.logger.Info().
		Str("category_id", category.ID).
		Str("user_id", category.UserID).
		Msg("created category")
	return &category, nil
}

func (s *categoryServiceImpl) List(ctx context.Context, userID string) ([]models.Category, error) {
	const selectCategoriesQuery = `
SELECT id,
       name,
       color,
       description,
       created_at,
       updated_at
FROM categories
WHERE user_id = $1
ORDER BY name
`
	rows, err := s.db.Query(
		ctx,
		selectCategoriesQuery,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select categories")
		return nil, err
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		category := models.Category{
			UserID: userID,
		}
		err = rows.Scan(
			&category.ID,
			&category.Name,
			&category.Color,
			&category.Description,
			&category.CreatedAt,
			&category.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan category")
			return nil, err
		}
		categories = append(categories, category)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	return categories, nil
}

func (s *categoryServiceImpl) GetByID(ctx context.Context, categoryID, userID string) (*models.Category, error) {
	category, err := s.selectCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if category.UserID != userID {
		s.logger.Warn().
			Str("category_id", categoryID).
			Str("user_id", userID).
			Msg("category owned by another user")
		return nil, ErrForbidden
	}

	return category, nil
}

func (s *categoryServiceImpl) Update(ctx context.Context, params UpdateCategoryParams) (*models.Category, error) {
	category, err := s.selectCategory(ctx, params.CategoryID)
	if err != nil {
		return nil, err
	}

	if category.UserID != params.UserID {
		s.logger.Warn().
			Str("category_id", params.CategoryID).
			Str("user_id", params.UserID).
			Msg("category owned by another user")
		return nil, ErrForbidden
	}

	// Renaming to the current name is a no-op, not a conflict.
	if params.Name != nil && *params.Name != category.Name {
		var existingID string
		err = s.db.QueryRow(
			ctx,
			selectCategoryByNameQuery,
			params.UserID,
			*params.Name,
		).Scan(&existingID)
		if err == nil {
			s.logger.Warn().
				Str("user_id", params.UserID).
				Str("name", *params.Name).
				Msg("category name already taken")
			return nil, ErrCategoryNameTaken
		} else if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Err(err).
				Msg("failed to select category by name")
			return nil, err
		}
	}

	if params.Name != nil {
		category.Name = *params.Name
	}
	if params.Color != nil {
		category.Color = params.Color
	}
	if params.Description != nil {
		category.Description = params.Description
	}
	category.UpdatedAt = time.Now()

	const updateCategoryQuery = `
UPDATE categories
SET name = $1,
    color = $2,
    description = $3,
    updated_at = $4
WHERE id = $5
`
	_, err = s.db.Exec(
		ctx,
		updateCategoryQuery,
		category.Name,
		category.Color,
		category.Description,
		category.UpdatedAt,
		category.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrCategoryNameTaken
		}

		s.logger.Error().
			Err(err).
			Msg("failed to update category")
		return nil, err
	}

	s.logger.Info().
		Str("category_id", category.ID).
		Msg("updated category")
	return category, nil
}

func (s *categoryServiceImpl) Delete(ctx context.Context, categoryID, userID string) error {
	category, err := s.selectCategory(ctx, categoryID)
	if err != nil {
		return err
	}

	if category.UserID != userID {
		s.logger.Warn().
			Str("category_id", categoryID).
			Str("user_id", userID).
			Msg("category owned by another user")
		return ErrForbidden
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Tasks survive the category; only the reference is cleared.
	const detachTasksQuery = `
UPDATE tasks
SET category_id = NULL
WHERE category_id = $1
`
	tag, err := tx.Exec(
		ctx,
		detachTasksQuery,
		categoryID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to detach tasks from category")
		return err
	}
	s.logger.Debug().
		Str("category_id", categoryID).
		Int64("affected", tag.RowsAffected()).
		Msg("detached tasks from category")

	const deleteCategoryQuery = `
DELETE FROM categories
       WHERE id = $1
`
	_, err = tx.Exec(
		ctx,
		deleteCategoryQuery,
		categoryID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to delete category")
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return err
	}

	s.logger.Info().
		Str("category_id", categoryID).
		Msg("deleted category")
	return nil
}

func (s *categoryServiceImpl) selectCategory(ctx context.Context, categoryID string) (*models.Category, error) {
	category := &models.Category{
		ID: categoryID,
	}

	err := s.db.QueryRow(
		ctx,
		selectCategoryByIDQuery,
		category.ID,
	).Scan(
		&category.UserID,
		&category.Name,
		&category.Color,
		&category.Description,
		&category.CreatedAt,
		&category.UpdatedAt,
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

	return category, nil
}
