package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/travel-agency/internal/database"
	"github.com/iliyamo/travel-agency/internal/model"
	"github.com/iliyamo/travel-agency/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password, displayName, role string, cost int) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, display_name, password_hash, role, created_at) VALUES (?,?,?,?,?,?)",
		id, email, strings.TrimSpace(displayName), hash, role, toMillis(time.Now()))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

const userColumns = "id,email,display_name,photo_url,password_hash,role,created_at"

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	var created int64
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PhotoURL, &u.PasswordHash, &u.Role, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.CreatedAt = fromMillis(created)
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// Profile returns the public profile of a user.
func (r *UserRepo) Profile(ctx context.Context, id string) (model.PublicProfile, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return model.PublicProfile{}, err
	}
	return u.Profile(), nil
}

// UpdateProfile changes the display name and photo of a user.
func (r *UserRepo) UpdateProfile(ctx context.Context, id, displayName, photoURL string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET display_name=?, photo_url=? WHERE id=?",
		strings.TrimSpace(displayName), strings.TrimSpace(photoURL), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
