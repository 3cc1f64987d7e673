package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskflow/internal/models"
)

type userServiceImpl struct {
	logger zerolog.Logger
	db     DB
}

func NewUserService(
	logger zerolog.Logger,
	db DB,
) UserService {
	return &userServiceImpl{
		logger: logger,
		db:     db,
	}
}

func (s *userServiceImpl) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user := &models.User{
		ID: userID,
	}

	const selectUserByIDQuery = `
SELECT username,
       email,
       first_name,
       last_name,
       created_at,
       updated_at
FROM users
WHERE id = $1
`
	err := s.db.QueryRow(
		ctx,
		selectUserByIDQuery,
		user.ID,
	).Scan(
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("user_id", user.ID).
				Msg("user not found")
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to select user by id")
		return nil, err
	}

	return user, nil
}
