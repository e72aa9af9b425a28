package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sergiomanvel/HiveAutomation/internal/domain"
)

// UserStorage реализует интерфейс ports.UserStorage поверх PostgreSQL (sqlx)
type UserStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage
func NewUserStorage(db *sqlx.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// ListUsers возвращает публичные проекции всех пользователей (без паролей)
func (s *UserStorage) ListUsers(ctx context.Context) ([]domain.PublicUser, error) {
	users := []domain.PublicUser{}
	err := s.db.SelectContext(ctx, &users, `SELECT id, username FROM users ORDER BY id`)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("ошибка при получении списка пользователей: %w", err)
	}
	return users, nil
}

// GetUserByID возвращает публичную проекцию пользователя по ID
func (s *UserStorage) GetUserByID(ctx context.Context, id int64) (*domain.PublicUser, error) {
	var user domain.PublicUser
	err := s.db.GetContext(ctx, &user, `SELECT id, username FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		s.logger.Error("failed to select user by id", "user_id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении пользователя по ID: %w", err)
	}
	return &user, nil
}

// GetUserByUsername возвращает пользователя вместе с хэшем пароля (для логина)
func (s *UserStorage) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, `SELECT id, username, password FROM users WHERE username = $1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		s.logger.Error("failed to select user by username", "username", username, "error", err)
		return nil, fmt.Errorf("ошибка при получении пользователя по username: %w", err)
	}
	return &user, nil
}

// CreateUser вставляет строку, ID назначается базой данных
func (s *UserStorage) CreateUser(ctx context.Context, username, passwordHash string) (*domain.PublicUser, error) {
	start := time.Now()

	var user domain.PublicUser
	err := s.db.GetContext(ctx, &user, `
        INSERT INTO users (username, password) VALUES ($1, $2)
        RETURNING id, username
    `, username, passwordHash)
	if err != nil {
		s.logger.Error("failed to insert user", "username", username, "error", err)
		return nil, fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	s.logger.Info("user created successfully",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}

// UpdateUser обновляет строку по ID. Ноль затронутых строк — ErrUserNotFound
func (s *UserStorage) UpdateUser(ctx context.Context, id int64, username, passwordHash string) (*domain.PublicUser, error) {
	var user domain.PublicUser
	err := s.db.GetContext(ctx, &user, `
        UPDATE users SET username = $1, password = $2 WHERE id = $3
        RETURNING id, username
    `, username, passwordHash, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		s.logger.Error("failed to update user", "user_id", id, "error", err)
		return nil, fmt.Errorf("ошибка при обновлении пользователя: %w", err)
	}
	return &user, nil
}

// DeleteUser удаляет строку по ID. Ноль затронутых строк — ErrUserNotFound
func (s *UserStorage) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return fmt.Errorf("ошибка при удалении пользователя: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при получении числа затронутых строк: %w", err)
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
