package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/pulsekit/pulse/internal/database/dbpool"
	"github.com/pulsekit/pulse/internal/logging"
)

// Service errors
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// pgUniqueViolation is the PostgreSQL error code for a unique constraint.
const pgUniqueViolation = "23505"

const userCacheTTL = time.Hour

// User is a row in the users table.
type User struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserService provides user persistence over the shared pool with an
// optional read-through Redis cache.
type UserService struct {
	db    *dbpool.Pool
	cache *redis.Client
}

func NewUserService(db *dbpool.Pool, cache *redis.Client) *UserService {
	return &UserService{db: db, cache: cache}
}

// Create inserts a new user and returns the stored row.
func (s *UserService) Create(ctx context.Context, name, email string) (*User, error) {
	var u User
	err := s.db.DB().QueryRow(ctx,
		`INSERT INTO users (name, email) VALUES ($1, $2)
		 RETURNING id, name, email, created_at`,
		name, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.cacheUser(ctx, &u)
	return &u, nil
}

// Get returns a user by id, consulting the cache first.
func (s *UserService) Get(ctx context.Context, id int32) (*User, error) {
	if u := s.cachedUser(ctx, id); u != nil {
		return u, nil
	}

	var u User
	err := s.db.DB().QueryRow(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}

	s.cacheUser(ctx, &u)
	return &u, nil
}

// List returns all users, newest first.
func (s *UserService) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.DB().Query(ctx,
		`SELECT id, name, email, created_at FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Update replaces a user's name and email.
func (s *UserService) Update(ctx context.Context, id int32, name, email string) (*User, error) {
	var u User
	err := s.db.DB().QueryRow(ctx,
		`UPDATE users SET name = $1, email = $2 WHERE id = $3
		 RETURNING id, name, email, created_at`,
		name, email, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}

	s.cacheUser(ctx, &u)
	return &u, nil
}

// Delete removes a user by id.
func (s *UserService) Delete(ctx context.Context, id int32) error {
	tag, err := s.db.DB().Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	s.dropCachedUser(ctx, id)
	return nil
}

func userCacheKey(id int32) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *UserService) cachedUser(ctx context.Context, id int32) *User {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, userCacheKey(id)).Bytes()
	if err != nil {
		return nil
	}
	var u User
	if err := json.Unmarshal(payload, &u); err != nil {
		return nil
	}
	return &u
}

func (s *UserService) cacheUser(ctx context.Context, u *User) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(u)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, userCacheKey(u.ID), payload, userCacheTTL).Err(); err != nil {
		logging.L().Warn("failed to cache user", zap.Int32("id", u.ID), zap.Error(err))
	}
}

func (s *UserService) dropCachedUser(ctx context.Context, id int32) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, userCacheKey(id)).Err(); err != nil {
		logging.L().Warn("failed to drop cached user", zap.Int32("id", id), zap.Error(err))
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
