package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"recipe-service/auth"
	"recipe-service/models"

	sq "github.com/Masterminds/squirrel"
)

var userColumns = []string{
	"id", "email", "name", "password", "is_active", "is_staff", "is_superuser", "created_at", "updated_at",
}

// NormalizeEmail trims and lower-cases the whole address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser hashes the password and stores a new active user
func (s *Store) CreateUser(ctx context.Context, email, password, name string) (models.User, error) {
	return s.createUser(ctx, email, password, name, false)
}

// CreateSuperuser is CreateUser with staff and superuser flags set
func (s *Store) CreateSuperuser(ctx context.Context, email, password, name string) (models.User, error) {
	return s.createUser(ctx, email, password, name, true)
}

func (s *Store) createUser(ctx context.Context, email, password, name string, elevated bool) (models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return models.User{}, invalid("email", "users must have an email address")
	}
	if password == "" {
		return models.User{}, invalid("password", "users must have a password")
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, invalid("password", "%v", err)
	}

	ts := now()
	id, err := insertBuilt(ctx, s.db, s.sb.Insert("users").
		Columns("email", "name", "password", "is_active", "is_staff", "is_superuser", "created_at", "updated_at").
		Values(email, strings.TrimSpace(name), hashed, true, elevated, elevated, ts, ts))
	if isUniqueViolation(err) {
		return models.User{}, ErrEmailTaken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	return s.GetUser(ctx, id)
}

// GetUser loads a user by id
func (s *Store) GetUser(ctx context.Context, id int) (models.User, error) {
	var user models.User
	err := getBuilt(ctx, s.db, &user, s.sb.Select(userColumns...).From("users").Where(sq.Eq{"id": id}))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

// Authenticate checks an email/password pair against the stored hash
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	var user models.User
	err := getBuilt(ctx, s.db, &user, s.sb.Select(userColumns...).From("users").
		Where(sq.Eq{"email": NormalizeEmail(email)}))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}

	if !user.IsActive || !auth.CheckPassword(user.Password, password) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// UpdateUser applies the non-nil fields of patch; a new password is re-hashed
func (s *Store) UpdateUser(ctx context.Context, id int, patch models.UserPatch) (models.User, error) {
	set := map[string]any{}

	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if email == "" {
			return models.User{}, invalid("email", "users must have an email address")
		}
		set["email"] = email
	}
	if patch.Name != nil {
		set["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Password != nil {
		hashed, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return models.User{}, invalid("password", "%v", err)
		}
		set["password"] = hashed
	}

	if len(set) == 0 {
		return s.GetUser(ctx, id)
	}
	set["updated_at"] = now()

	affected, err := execBuilt(ctx, s.db, s.sb.Update("users").SetMap(set).Where(sq.Eq{"id": id}))
	if isUniqueViolation(err) {
		return models.User{}, ErrEmailTaken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("update user %d: %w", id, err)
	}
	if affected == 0 {
		return models.User{}, ErrNotFound
	}

	return s.GetUser(ctx, id)
}
