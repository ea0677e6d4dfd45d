package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recipe-service/auth"
	"recipe-service/models"

	sq "github.com/Masterminds/squirrel"
)

// IssueToken returns the user's token key, creating it on first use
func (s *Store) IssueToken(ctx context.Context, userID int) (string, error) {
	key, err := s.tokenForUser(ctx, userID)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	key, err = auth.GenerateTokenKey()
	if err != nil {
		return "", err
	}
	_, err = execBuilt(ctx, s.db, s.sb.Insert("auth_tokens").
		Columns("token", "user_id", "created_at").
		Values(key, userID, now()))
	if isUniqueViolation(err) {
		// Issued concurrently; hand back the winner
		return s.tokenForUser(ctx, userID)
	}
	if err != nil {
		return "", fmt.Errorf("insert token: %w", err)
	}
	return key, nil
}

func (s *Store) tokenForUser(ctx context.Context, userID int) (string, error) {
	var token models.Token
	err := getBuilt(ctx, s.db, &token, s.sb.Select("token", "user_id", "created_at").
		From("auth_tokens").Where(sq.Eq{"user_id": userID}))
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return token.Key, nil
}

// UserIDByToken resolves a token key to the id of an active user
func (s *Store) UserIDByToken(ctx context.Context, key string) (int, error) {
	var userID int
	err := getBuilt(ctx, s.db, &userID, s.sb.Select("t.user_id").
		From("auth_tokens t").
		Join("users u ON u.id = t.user_id").
		Where(sq.Eq{"t.token": key, "u.is_active": true}))
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolve token: %w", err)
	}
	return userID, nil
}

// UserByToken resolves a token key to an active user
func (s *Store) UserByToken(ctx context.Context, key string) (models.User, error) {
	userID, err := s.UserIDByToken(ctx, key)
	if err != nil {
		return models.User{}, err
	}
	return s.GetUser(ctx, userID)
}
