package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskflow/internal/auth"
	"github.com/adanyl0v/taskflow/internal/models"
)

type authServiceImpl struct {
	logger zerolog.Logger
	db     DB
	hasher auth.PasswordHasher
	tokens *auth.TokenService
}

func NewAuthService(
	logger zerolog.Logger,
	db DB,
	hasher auth.PasswordHasher,
	tokens *auth.TokenService,
) AuthService {
	return &authServiceImpl{
		logger: logger,
		db:     db,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	now := time.Now()
	user := models.User{
		Username:  params.Username,
		Email:     params.Email,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}
	user.ID = userUUID.String()

	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}
	user.PasswordHash = passwordHash

	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The pre-checks make the conflict attributable to a field. The
	// unique constraints below still settle concurrent registrations.
	const selectUserByUsernameQuery = `
SELECT id
FROM users
WHERE username = $1
`
	var existingID string
	err = tx.QueryRow(
		ctx,
		selectUserByUsernameQuery,
		user.Username,
	).Scan(&existingID)
	if err == nil {
		s.logger.Warn().
			Str("username", user.Username).
			Msg("username already registered")
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Error().
			Err(err).
			Msg("failed to select user by username")
		return nil, err
	}

	const selectUserByEmailQuery = `
SELECT id
FROM users
WHERE email = $1
`
	err = tx.QueryRow(
		ctx,
		selectUserByEmailQuery,
		user.Email,
	).Scan(&existingID)
	if err == nil {
		s.logger.Warn().
			Str("email", user.Email).
			Msg("email already registered")
		return nil, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Error().
			Err(err).
			Msg("failed to select user by email")
		return nil, err
	}

	const insertUserQuery = `
INSERT INTO users (id,
                   username,
                   email,
                   password_hash,
                   first_name,
                   last_name,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err = tx.Exec(
		ctx,
		insertUserQuery,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
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
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("registered user")
	return &user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	user := models.User{
		Email: params.Email,
	}

	const selectUserByEmailQuery = `
SELECT id,
       username,
       password_hash,
       first_name,
       last_name
FROM users
WHERE email = $1
`
	err := s.db.QueryRow(
		ctx,
		selectUserByEmailQuery,
		user.Email,
	).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("email", user.Email).
				Msg("login with unknown email")
			return nil, ErrUserPasswordMismatch
		}

		s.logger.Error().
			Err(err).
			Str("email", user.Email).
			Msg("failed to select user by email")
		return nil, err
	}

	if !s.hasher.Verify(params.Password, user.PasswordHash) {
		s.logger.Warn().
			Str("user_id", user.ID).
			Msg("password mismatch")
		return nil, ErrUserPasswordMismatch
	}

	accessToken, accessTokenExpiresAt, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to issue access token")
		return nil, err
	}

	refreshToken, _, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to issue refresh token")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("logged in")
	return &LoginResult{
		User:                 &user,
		AccessToken:          accessToken,
		AccessTokenExpiresAt: accessTokenExpiresAt,
		RefreshToken:         refreshToken,
		ExpiresIn:            int(s.tokens.AccessTokenTTL().Seconds()),
	}, nil
}

func (s *authServiceImpl) Refresh(_ context.Context, refreshToken string) (*RefreshResult, error) {
	claims, err := s.tokens.Decode(refreshToken)
	if err != nil {
		s.logger.Warn().Msg("failed to decode refresh token")
		return nil, ErrInvalidRefreshToken
	}

	if claims.TokenType != auth.TokenTypeRefresh {
		s.logger.Warn().
			Str("type", claims.TokenType).
			Msg("refresh with wrong token type")
		return nil, ErrInvalidRefreshToken
	}

	if claims.Subject == "" {
		s.logger.Warn().Msg("refresh token missing subject")
		return nil, ErrInvalidRefreshToken
	}

	accessToken, _, err := s.tokens.IssueAccess(claims.Subject)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to issue access token")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", claims.Subject).
		Msg("refreshed access token")
	return &RefreshResult{
		AccessToken: accessToken,
		ExpiresIn:   int(s.tokens.AccessTokenTTL().Seconds()),
	}, nil
}
